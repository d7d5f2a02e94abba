package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/grass-estimator/internal/estimator"
	"github.com/sells-group/grass-estimator/internal/notify"
	"github.com/sells-group/grass-estimator/internal/pricing"
	"github.com/sells-group/grass-estimator/internal/request"
	"github.com/sells-group/grass-estimator/internal/resilience"
	"github.com/sells-group/grass-estimator/internal/snapshot"
	"github.com/sells-group/grass-estimator/pkg/emailjs"
	"github.com/sells-group/grass-estimator/pkg/places"
)

// appEnv holds the initialized dependencies shared by commands.
type appEnv struct {
	Store     snapshot.Store
	Submitter estimator.Submitter
	Builder   *request.Builder
	Pricing   pricing.Loader
	Formatter *pricing.Formatter
	Places    places.Client
	Notifier  notify.Notifier
}

// Close releases the snapshot store.
func (e *appEnv) Close() {
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			zap.L().Warn("close store", zap.Error(err))
		}
	}
}

// initEnv validates config for mode and builds every collaborator the mode
// needs. The submitter and notifier are only built for "estimate" and "serve".
func initEnv(ctx context.Context, mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	formatter, err := initFormatter()
	if err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	env := &appEnv{
		Store:     st,
		Builder:   request.NewBuilder(cfg.Estimator.FileField),
		Pricing:   initPricing(),
		Formatter: formatter,
		Places:    initPlaces(),
	}

	if mode == "profile" {
		return env, nil
	}

	env.Submitter, err = estimator.New(cfg)
	if err != nil {
		env.Close()
		return nil, eris.Wrap(err, "init estimator")
	}
	env.Notifier = initNotifier(formatter)

	return env, nil
}

func sessionTTL() time.Duration {
	if cfg.Store.SessionTTLHours <= 0 {
		return snapshot.DefaultTTL
	}
	return time.Duration(cfg.Store.SessionTTLHours) * time.Hour
}

func initStore(ctx context.Context) (snapshot.Store, error) {
	ttl := sessionTTL()

	var (
		st  snapshot.Store
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "grass.db"
		}
		st, err = snapshot.NewSQLite(dsn, ttl)
	case "postgres":
		st, err = snapshot.NewPostgres(ctx, cfg.Store.DatabaseURL, ttl)
	case "memory":
		st = snapshot.NewMemory(ttl)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initPricing returns nil when no pricing document is configured, which
// leaves every price unavailable.
func initPricing() pricing.Loader {
	if cfg.Pricing.URL == "" {
		return nil
	}
	return pricing.NewLoader(cfg.Pricing.URL)
}

func initFormatter() (*pricing.Formatter, error) {
	f, err := pricing.NewFormatter(cfg.Pricing.Locale, cfg.Pricing.Currency)
	if err != nil {
		return nil, eris.Wrap(err, "init currency formatter")
	}
	return f, nil
}

// retryingPlaces repeats address lookups that failed for transient reasons.
// Autocomplete sits outside the submission flow, so repeating it never
// repeats an estimate or an email.
type retryingPlaces struct {
	places.Client
	policy resilience.Policy
}

func (p retryingPlaces) Suggest(ctx context.Context, input string) ([]places.Suggestion, error) {
	var out []places.Suggestion
	err := resilience.Do(ctx, p.policy, "places.suggest", func(ctx context.Context) error {
		var err error
		out, err = p.Client.Suggest(ctx, input)
		return err
	})
	return out, err
}

// initPlaces returns nil when no API key is configured.
func initPlaces() places.Client {
	if cfg.Places.Key == "" {
		return nil
	}
	opts := []places.Option{}
	if cfg.Places.BaseURL != "" {
		opts = append(opts, places.WithBaseURL(cfg.Places.BaseURL))
	}
	if cfg.Places.Country != "" {
		opts = append(opts, places.WithCountry(cfg.Places.Country))
	}
	if cfg.Places.RateLimit > 0 {
		opts = append(opts, places.WithRateLimit(cfg.Places.RateLimit))
	}
	return retryingPlaces{
		Client: places.NewClient(cfg.Places.Key, opts...),
		policy: resilience.DefaultPolicy(),
	}
}

// initNotifier returns nil unless confirmation emails are enabled.
func initNotifier(formatter *pricing.Formatter) notify.Notifier {
	if !cfg.Notify.Enabled {
		return nil
	}
	opts := []emailjs.Option{}
	if cfg.Notify.BaseURL != "" {
		opts = append(opts, emailjs.WithBaseURL(cfg.Notify.BaseURL))
	}
	if cfg.Notify.PrivateKey != "" {
		opts = append(opts, emailjs.WithPrivateKey(cfg.Notify.PrivateKey))
	}
	client := emailjs.NewClient(cfg.Notify.ServiceID, cfg.Notify.TemplateID, cfg.Notify.PublicKey, opts...)
	return notify.NewMailer(client, formatter)
}
