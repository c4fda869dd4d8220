package handler

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/followups/pkg/httpcontext"
	"github.com/fastygo/followups/usecase/dashboard"
)

//go:embed templates/today.html
var templatesFS embed.FS

var todayTmpl = template.Must(template.ParseFS(templatesFS, "templates/today.html"))

type DashboardHandler struct {
	baseHandler
	dashboard *dashboard.Dashboard
}

func NewDashboardHandler(d *dashboard.Dashboard, adapter *httpcontext.Adapter, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		baseHandler: newBaseHandler(adapter, logger),
		dashboard:   d,
	}
}

// Page renders today's open tasks. Every load refetches.
func (h *DashboardHandler) Page(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.render(ctx, h.dashboard.Reload(stdCtx))
}

// Complete handles the per-row "Mark Complete" form and renders the refetched list.
func (h *DashboardHandler) Complete(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	id, _ := ctx.UserValue("id").(string)
	h.log(stdCtx).Info("dashboard completion", zap.String("task_id", id))
	h.render(ctx, h.dashboard.Complete(stdCtx, id))
}

func (h *DashboardHandler) render(ctx *fasthttp.RequestCtx, state dashboard.State) {
	var buf bytes.Buffer
	if err := todayTmpl.Execute(&buf, state); err != nil {
		h.logger.Error("render dashboard", zap.Error(err))
		ctx.Response.Header.SetContentType("text/plain; charset=utf-8")
		ctx.SetStatusCode(http.StatusInternalServerError)
		ctx.SetBodyString("Error: " + err.Error())
		return
	}
	ctx.Response.Header.SetContentType("text/html; charset=utf-8")
	ctx.SetStatusCode(http.StatusOK)
	ctx.SetBody(buf.Bytes())
}
