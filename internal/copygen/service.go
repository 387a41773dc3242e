package copygen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/DreadX3/copy-snap-magic-words/internal/config"
	"github.com/DreadX3/copy-snap-magic-words/internal/events"
	"github.com/DreadX3/copy-snap-magic-words/internal/metrics"
	"github.com/DreadX3/copy-snap-magic-words/internal/usage"
	"github.com/DreadX3/copy-snap-magic-words/internal/users"
)

// ErrProviderFailed wraps any image-fetch or model failure so handlers
// can map it to a single upstream-error response.
var ErrProviderFailed = errors.New("copy generation provider failed")

// HistoryAppender records a finished generation for the user.
type HistoryAppender interface {
	Append(ctx context.Context, userID uuid.UUID, imageURL string, copies []string, isPro bool) error
}

// Service runs the full generation pipeline: quota, image fetch, model
// call, parsing, history and audit.
type Service struct {
	llm       LLM
	fetcher   ImageFetcher
	usage     *usage.Service
	users     *users.Service
	history   HistoryAppender
	publisher *events.Publisher
	quota     config.QuotaConfig
	timeout   time.Duration
}

func NewService(llm LLM, fetcher ImageFetcher, usageSvc *usage.Service, userSvc *users.Service, history HistoryAppender, publisher *events.Publisher, quota config.QuotaConfig, timeout time.Duration) *Service {
	return &Service{
		llm:       llm,
		fetcher:   fetcher,
		usage:     usageSvc,
		users:     userSvc,
		history:   history,
		publisher: publisher,
		quota:     quota,
		timeout:   timeout,
	}
}

// Generate produces up to three copy variations for the image. The quota
// is consumed up front and refunded if the provider call fails, so a
// broken upstream never burns the user's allowance.
func (s *Service) Generate(ctx context.Context, userID uuid.UUID, imageURL string, opts Options) ([]string, error) {
	profile, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	if profile == nil {
		return nil, fmt.Errorf("profile %s not found", userID)
	}

	limits := usage.LimitsForTier(s.quota, profile.IsPro)
	if err := s.usage.Consume(ctx, userID, limits); err != nil {
		if isQuotaDenial(err) {
			s.publisher.Audit(ctx, userID, events.EventQuotaDenied, "warn",
				fmt.Sprintf(`{"reason":%q,"is_pro":%t}`, err.Error(), profile.IsPro))
		}
		return nil, err
	}

	copies, err := s.generate(ctx, imageURL, opts)
	if err != nil {
		s.usage.Refund(ctx, userID)
		metrics.GenerationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %w", ErrProviderFailed, err)
	}

	metrics.GenerationsTotal.WithLabelValues("success").Inc()

	if err := s.history.Append(ctx, userID, imageURL, copies, profile.IsPro); err != nil {
		// The user already has their copy; losing one history entry is
		// not worth failing the request.
		slog.Warn("appending generation to history", "error", err, "user_id", userID)
	}

	s.publisher.Audit(ctx, userID, events.EventCopyGenerated, "info",
		fmt.Sprintf(`{"variations":%d,"is_pro":%t}`, len(copies), profile.IsPro))

	return copies, nil
}

func (s *Service) generate(ctx context.Context, imageURL string, opts Options) ([]string, error) {
	if s.llm == nil {
		return nil, errors.New("no model provider configured")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	}()

	dataURL, err := s.fetcher.FetchDataURL(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	raw, err := s.llm.GenerateCopy(ctx, BuildPrompt(opts), dataURL)
	if err != nil {
		return nil, err
	}

	copies := ParseCopies(raw)
	if len(copies) == 0 {
		return nil, errors.New("model returned no usable copy")
	}
	return copies, nil
}

func isQuotaDenial(err error) bool {
	return errors.Is(err, usage.ErrDailyLimit) ||
		errors.Is(err, usage.ErrMonthlyLimit) ||
		errors.Is(err, usage.ErrRateLimited)
}
