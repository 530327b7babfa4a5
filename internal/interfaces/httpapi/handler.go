package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/cricket-fantasy/internal/platform/logging"
	"github.com/riskibarqy/cricket-fantasy/internal/usecase"
)

type Handler struct {
	data               *usecase.StalenessCache
	creditService      *usecase.CreditService
	scoringService     *usecase.ScoringService
	contestService     *usecase.ContestService
	rosterService      *usecase.RosterService
	leaderboardService *usecase.LeaderboardService
	resyncService      *usecase.ResyncService
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	data *usecase.StalenessCache,
	creditService *usecase.CreditService,
	scoringService *usecase.ScoringService,
	contestService *usecase.ContestService,
	rosterService *usecase.RosterService,
	leaderboardService *usecase.LeaderboardService,
	resyncService *usecase.ResyncService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		data:               data,
		creditService:      creditService,
		scoringService:     scoringService,
		contestService:     contestService,
		rosterService:      rosterService,
		leaderboardService: leaderboardService,
		resyncService:      resyncService,
		logger:             logger.Named("httpapi"),
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetRateLimit(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRateLimit")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, rateLimitToDTO(h.data.RateLimitInfo(), nowFunc()))
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeJSON rejects unknown fields. An empty body leaves dst untouched when
// allowEmpty is set.
func decodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

// queryInt reads a non-negative integer query parameter. Missing means
// fallback.
func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", usecase.ErrInvalidInput, key)
	}
	return value, nil
}
