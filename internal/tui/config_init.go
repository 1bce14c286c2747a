package tui

import (
	"errors"
	"strings"

	"nathanbeddoewebdev/chainwatch/internal/config"
	"nathanbeddoewebdev/chainwatch/internal/metrics"
	"nathanbeddoewebdev/chainwatch/internal/stream"
	"nathanbeddoewebdev/chainwatch/internal/tui/styles"

	"github.com/charmbracelet/huh"
)

// ErrAborted is returned when the user cancels an interactive form.
var ErrAborted = errors.New("aborted")

// RunConfigInit walks the user through the connection settings, starting
// from cfg, and returns the edited copy. Nothing is saved.
func RunConfigInit(cfg *config.Config, accessible bool) (*config.Config, error) {
	f := newInitForm(cfg)
	if err := f.form.WithAccessible(accessible).Run(); err != nil {
		return nil, formError(err)
	}
	return f.result()
}

// initForm holds the form and the values its fields write into.
type initForm struct {
	form  *huh.Form
	out   config.Config
	units string
}

func newInitForm(cfg *config.Config) *initForm {
	f := &initForm{out: *cfg, units: strings.Join(cfg.Units, ",")}

	endpoints := huh.NewGroup(
		huh.NewInput().
			Title("Metrics endpoint").
			Description("Prometheus-style text exposition").
			Value(&f.out.MetricsURL).
			Validate(f.check("metrics-url")),
		huh.NewInput().
			Title("Block stream").
			Description("Websocket URL of the node").
			Value(&f.out.WSURL).
			Validate(f.check("ws-url")),
		huh.NewSelect[string]().
			Title("Stream protocol").
			Options(
				huh.NewOption("Ethereum JSON-RPC (eth_subscribe newHeads)", string(stream.ProtocolJSONRPC)),
				huh.NewOption("One JSON record per frame", string(stream.ProtocolRecords)),
			).
			Value(&f.out.StreamProtocol),
	)

	profileOpts := make([]huh.Option[string], 0, len(metrics.Profiles()))
	for _, p := range metrics.Profiles() {
		profileOpts = append(profileOpts, huh.NewOption(p, p))
	}
	themeOpts := make([]huh.Option[string], 0, len(styles.Themes))
	for _, t := range styles.ThemeNames() {
		themeOpts = append(themeOpts, huh.NewOption(t, t))
	}

	display := huh.NewGroup(
		huh.NewSelect[string]().
			Title("Metric names").
			Options(profileOpts...).
			Value(&f.out.MetricProfile),
		huh.NewInput().
			Title("Systemd units").
			Description("Comma-separated, leave empty to skip").
			Value(&f.units),
		huh.NewSelect[string]().
			Title("Theme").
			Options(themeOpts...).
			Value(&f.out.Theme),
	)

	f.form = huh.NewForm(endpoints, display)
	return f
}

// check validates a field value against the rest of the form's config.
func (f *initForm) check(key string) func(string) error {
	return func(v string) error { return config.CheckValue(&f.out, key, strings.TrimSpace(v)) }
}

// result returns the submitted config with free-text fields normalized.
func (f *initForm) result() (*config.Config, error) {
	out := f.out
	if err := config.Lookup("units").Set(&out, f.units); err != nil {
		return nil, err
	}
	out.MetricsURL = strings.TrimSpace(out.MetricsURL)
	out.WSURL = strings.TrimSpace(out.WSURL)
	return &out, nil
}

func formError(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	return err
}
