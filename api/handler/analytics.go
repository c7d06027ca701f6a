package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	analyticsUC "github.com/fastygo/taskboard/usecase/analytics"
)

type AnalyticsHandler struct {
	baseHandler
	uc *analyticsUC.UseCase
}

func NewAnalyticsHandler(uc *analyticsUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Recent activity of the caller
// @Tags analytics
// @Router /api/v1/analytics/activity [get]
func (h *AnalyticsHandler) Activity(ctx *fasthttp.RequestCtx) {
	userID := h.requireUser(ctx)
	if userID == "" {
		return
	}
	limit := parseInt(string(ctx.QueryArgs().Peek("limit")), analyticsUC.DefaultActivityLimit)
	entries := h.uc.RecentActivity(userID, limit)
	h.respondList(ctx, entries, transport.ListMeta{Count: len(entries), Limit: limit})
}

// @Summary Metric buckets; ?key selects one, ?from&to a range
// @Tags analytics
// @Router /api/v1/analytics/metrics [get]
func (h *AnalyticsHandler) Metrics(ctx *fasthttp.RequestCtx) {
	userID := h.requireUser(ctx)
	if userID == "" {
		return
	}
	period, ok := h.period(ctx)
	if !ok {
		return
	}

	args := ctx.QueryArgs()
	if key := string(args.Peek("key")); key != "" {
		bucket, err := h.uc.Bucket(userID, period, key)
		if err != nil {
			h.respondError(ctx, err)
			return
		}
		h.respondSuccess(ctx, http.StatusOK, bucket)
		return
	}

	var (
		buckets []domain.Metrics
		err     error
	)
	from, to := string(args.Peek("from")), string(args.Peek("to"))
	switch {
	case from == "" && to == "":
		buckets, err = h.uc.All(userID, period)
	case from == "" || to == "":
		h.badRequest(ctx, "from and to must be given together")
		return
	default:
		buckets, err = h.uc.Range(userID, period, from, to)
	}
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, buckets, transport.ListMeta{Count: len(buckets)})
}

// @Summary Completion rate of one bucket
// @Tags analytics
// @Router /api/v1/analytics/completion-rate [get]
func (h *AnalyticsHandler) CompletionRate(ctx *fasthttp.RequestCtx) {
	userID := h.requireUser(ctx)
	if userID == "" {
		return
	}
	period, ok := h.period(ctx)
	if !ok {
		return
	}
	key := string(ctx.QueryArgs().Peek("key"))
	rate, err := h.uc.CompletionRate(userID, period, key)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"period": period,
		"key":    key,
		"rate":   rate,
	})
}

// @Summary Completion rate over the trailing days
// @Tags analytics
// @Router /api/v1/analytics/productivity [get]
func (h *AnalyticsHandler) Productivity(ctx *fasthttp.RequestCtx) {
	userID := h.requireUser(ctx)
	if userID == "" {
		return
	}
	days := analyticsUC.ClampProductivityDays(parseInt(string(ctx.QueryArgs().Peek("days")), 0))
	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"days":  days,
		"score": h.uc.ProductivityScore(userID, days),
	})
}

func (h *AnalyticsHandler) period(ctx *fasthttp.RequestCtx) (domain.Period, bool) {
	period, err := domain.ParsePeriod(string(ctx.QueryArgs().Peek("period")))
	if err != nil {
		h.respondError(ctx, err)
		return "", false
	}
	return period, true
}
