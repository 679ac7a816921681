package listactiveaccounts

import (
	c "accounts/internal/core/domain/common"
	e "accounts/internal/core/domain/errors"
	"accounts/internal/core/services"
	listactiveaccounts "accounts/internal/core/services/list_active_accounts"
	"accounts/internal/http/handlers/response"
	"net/http"
	"strconv"
)

const MAX_PAGE_SIZE = 100

type Handler struct {
	service services.Service[listactiveaccounts.Input, listactiveaccounts.Result]
}

func New(
	service services.Service[listactiveaccounts.Input, listactiveaccounts.Result],
) *Handler {
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Handler{service: service}
}

type Result struct {
	Content    []response.AccountSummary `json:"content"`
	Page       uint                      `json:"page"`
	Size       uint                      `json:"size"`
	TotalPages uint                      `json:"totalPages"`
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	input := listactiveaccounts.Input{
		Page: parsePage(r.URL.Query().Get("page")),
		Size: parseSize(r.URL.Query().Get("size")),
	}
	result, err := h.service.Run(r.Context(), input)
	if err != nil {
		response.RenderInternalError(rw, r)
		return
	}

	content := make([]response.AccountSummary, 0, len(result.Accounts))
	for _, summary := range result.Accounts {
		item := response.AccountSummary{}
		item.FromDomainSummary(summary)
		content = append(content, item)
	}
	response.Render(
		rw,
		Result{Content: content, Page: result.Page, Size: result.Size, TotalPages: result.TotalPages},
		http.StatusOK,
	)
}

// parsePage falls back to the first page for anything but a non-negative integer.
func parsePage(raw string) uint {
	page, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0
	}
	return uint(page)
}

// parseSize leaves the size unset, so the default applies, unless it is
// within 1..MAX_PAGE_SIZE.
func parseSize(raw string) (size c.Optional[uint]) {
	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || parsed == 0 || parsed > MAX_PAGE_SIZE {
		return size
	}
	return c.NewOptional(uint(parsed), true)
}
