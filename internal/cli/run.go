package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"smarttender-engine/internal/analysis"
	"smarttender-engine/internal/common/config"
	"smarttender-engine/internal/common/database"
	"smarttender-engine/internal/common/logger"
	"smarttender-engine/internal/common/observability"
	"smarttender-engine/internal/dispatch"
	"smarttender-engine/internal/models"
	"smarttender-engine/internal/reconcile"
	"smarttender-engine/internal/session"
	"smarttender-engine/internal/uploader"

	"github.com/manifoldco/promptui"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptSendMail    = "Send result email to candidate"
	PromptPickAnother = "Inspect another candidate"
	PromptStartOver   = "Start over"
	PromptQuit        = "Quit"
	PromptUploadAgain = "Return to upload"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the guided tender matching workflow",
	RunE: func(_ *cobra.Command, _ []string) error {
		return run()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func run() error {
	var cfg *config.Config
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFromFile(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	level, format := loggerSettings(cfg)
	zapLog := logger.New(level, format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	if cfg.Metrics.Enabled {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.Metrics.Address, nil); err != nil {
				zapLog.Warn("metrics endpoint stopped", zap.Error(err))
			}
		}()
	}

	ctx := context.Background()
	wiz, err := newWizard(ctx, cfg, log, obs)
	if err != nil {
		return err
	}
	return wiz.loop(ctx)
}

// loggerSettings resolves the log level and format, letting the
// --debug and --json flags override the config file.
func loggerSettings(cfg *config.Config) (level, format string) {
	level, format = cfg.Logging.Level, cfg.Logging.Format
	if viper.GetBool("debug") {
		level = "debug"
	}
	if viper.GetBool("json") {
		format = "json"
	}
	return level, format
}

// wizard holds the wired engine components driving the 4-step flow.
type wizard struct {
	cfg        *config.Config
	machine    *session.Machine
	submitter  *uploader.Submitter
	fetcher    *analysis.Fetcher
	dispatcher *dispatch.Dispatcher
	obs        *observability.Observability
	logger     logger.Logger
}

func newWizard(ctx context.Context, cfg *config.Config, log logger.Logger, obs *observability.Observability) (*wizard, error) {
	submitter := uploader.NewSubmitter(&uploader.Config{
		TenderURL:  cfg.Backend.UploadTenderURL(),
		CVsURL:     cfg.Backend.UploadCVsURL(),
		MaxCVBatch: cfg.Policy.MaxCVBatch,
		Timeout:    config.GetDuration(cfg.Backend.UploadTimeout),
	}, log)

	fetcher := analysis.NewFetcher(&analysis.Config{
		AnalyzeURL: cfg.Backend.AnalyzeURL(),
		Timeout:    config.GetDuration(cfg.Backend.RequestTimeout),
	}, log)

	var sender dispatch.Sender
	switch cfg.Email.Provider {
	case "ses":
		sesSender, err := dispatch.NewSESSender(ctx, cfg.Email.SES.Region, cfg.Email.SES.FromEmail, log)
		if err != nil {
			return nil, fmt.Errorf("init SES sender: %w", err)
		}
		sender = sesSender
	default:
		sender = dispatch.NewEmailJSSender(dispatch.EmailJSConfig{
			BaseURL:   cfg.Email.EmailJS.BaseURL,
			ServiceID: cfg.Email.EmailJS.ServiceID,
			APIKey:    cfg.Email.EmailJS.APIKey,
			Timeout:   config.GetDuration(cfg.Email.EmailJS.Timeout),
		}, log)
	}

	var ledger dispatch.Ledger = dispatch.NewMemoryLedger()
	if cfg.Session.Redis.Address != "" {
		redisClient, err := database.NewRedis(cfg.Session.Redis)
		if err == nil && redisClient.Ping(ctx) == nil {
			ledger = dispatch.NewRedisLedger(redisClient, config.GetDuration(cfg.Session.LedgerTTL*1000))
		} else {
			log.Warn("redis unavailable, using in-memory dispatch ledger", map[string]interface{}{
				"address": cfg.Session.Redis.Address,
			})
		}
	}

	dispatcher := dispatch.NewDispatcher(&dispatch.Config{
		GateScore: cfg.Policy.GateScore,
		Templates: dispatch.Templates{
			ValidationID: cfg.Email.EmailJS.ValidationTemplateID,
			RejectionID:  cfg.Email.EmailJS.RejectionTemplateID,
		},
	}, sender, ledger, log)

	return &wizard{
		cfg:        cfg,
		machine:    session.NewMachine(log),
		submitter:  submitter,
		fetcher:    fetcher,
		dispatcher: dispatcher,
		obs:        obs,
		logger:     log,
	}, nil
}

func (w *wizard) loop(ctx context.Context) error {
	for {
		switch w.machine.Step() {
		case session.Step1Overview:
			fmt.Println("SmartTender: match candidate CVs against a tender document.")
			if !confirm("Start a new match") {
				return nil
			}
			if err := w.machine.Advance(); err != nil {
				return err
			}

		case session.Step2Tender:
			if err := w.stepTender(ctx); err != nil {
				return err
			}

		case session.Step3CVs:
			if err := w.stepCVs(ctx); err != nil {
				return err
			}

		case session.Step4Results:
			done, err := w.stepResults(ctx)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}
	}
}

func (w *wizard) stepTender(ctx context.Context) error {
	path, err := askPath("Tender document path")
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		fmt.Printf("cannot open %s: %v\n", path, err)
		return nil // stay on the step
	}
	defer file.Close()

	acceptance, err := w.submitter.SubmitTender(ctx, uploader.Document{
		Name:    filepath.Base(path),
		Content: file,
	})
	if err != nil {
		// Upload failures block advancement but are not fatal.
		fmt.Println("Tender upload failed, please retry.")
		return nil
	}
	return w.machine.AdvanceWithTender(acceptance)
}

func (w *wizard) stepCVs(ctx context.Context) error {
	raw, err := askPath("CV document paths (comma separated)")
	if err != nil {
		return err
	}

	var docs []uploader.Document
	var files []*os.File
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()

	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		file, err := os.Open(p)
		if err != nil {
			fmt.Printf("cannot open %s: %v\n", p, err)
			return nil
		}
		files = append(files, file)
		docs = append(docs, uploader.Document{Name: filepath.Base(p), Content: file})
	}

	acceptance, err := w.submitter.SubmitCVs(ctx, docs)
	if err != nil {
		fmt.Println("CV upload failed, please retry.")
		return nil
	}
	return w.machine.AdvanceWithCVs(acceptance)
}

// stepResults drives the terminal phase of the wizard. Returns true
// when the user quits.
func (w *wizard) stepResults(ctx context.Context) (bool, error) {
	fmt.Println("Analyzing candidates...")
	if err := w.machine.ActivateResults(ctx, w.fetcher); err != nil {
		return false, err
	}
	w.obs.RecordFetch(ctx, string(w.machine.Phase()))

	switch w.machine.Phase() {
	case session.PhaseError:
		_, msg := w.machine.ErrorView()
		fmt.Printf("Backend connection error: %s\n", msg)
		if choose("What next?", []string{PromptStartOver, PromptQuit}) == PromptQuit {
			return true, nil
		}
		w.machine.Reset()
		return false, nil

	case session.PhaseEmpty:
		fmt.Println("No analysis results yet. Please re-upload your tender document and CVs.")
		if choose("What next?", []string{PromptUploadAgain, PromptQuit}) == PromptQuit {
			return true, nil
		}
		w.machine.Reset()
		return false, nil

	case session.PhaseReady:
		return w.browseResults(ctx)
	}
	return true, nil
}

func (w *wizard) browseResults(ctx context.Context) (bool, error) {
	for {
		roster := w.machine.Roster()
		labels := make([]string, 0, len(roster))
		for _, c := range roster {
			labels = append(labels, candidateLabel(c))
		}

		idx, _, err := (&promptui.Select{Label: "Candidates (best match first)", Items: labels, Size: 10}).Run()
		if err != nil {
			return true, nil
		}
		if err := w.machine.Select(roster[idx].ID); err != nil {
			return false, err
		}

		w.showExplanation()

		switch choose("Action", []string{PromptSendMail, PromptPickAnother, PromptStartOver, PromptQuit}) {
		case PromptSendMail:
			w.sendMail(ctx)
		case PromptPickAnother:
			continue
		case PromptStartOver:
			w.machine.Reset()
			return false, nil
		case PromptQuit:
			return true, nil
		}
	}
}

func (w *wizard) showExplanation() {
	candidate := w.machine.Selected()
	if candidate == nil {
		return
	}
	requirements := w.machine.Requirements()
	explanation := candidate.Explanation()

	fmt.Printf("\nAI Analysis: %s (score %d%%)\n", candidate.Profile.Name, candidate.Score)
	fmt.Printf("  Experience match: %s (%d vs %d required)\n",
		explanation.ExperienceMatch, candidate.Profile.ExperienceYears, requirements.ExperienceYears)
	fmt.Printf("  Sector match:     %s\n", explanation.SectorMatch)
	if len(explanation.CertificationMatch) > 0 {
		fmt.Printf("  Certifications:   %s\n", strings.Join(explanation.CertificationMatch, ", "))
	} else {
		fmt.Println("  Certifications:   none matched")
	}

	fmt.Println("  Required skills mapping:")
	for _, sm := range reconcile.Reconcile(requirements, candidate) {
		mark := "missing"
		if sm.Matched {
			mark = "matched"
		}
		fmt.Printf("    [%s] %s\n", mark, sm.Skill)
	}

	if candidate.Score >= w.cfg.Policy.GateScore {
		fmt.Printf("  Draft bid paragraph:\n    %s\n", candidate.BidDraft)
	} else {
		fmt.Println("  Candidate match too low; no bid draft is generated for this profile.")
	}
	fmt.Println()
}

func (w *wizard) sendMail(ctx context.Context) {
	candidate := w.machine.Selected()
	if candidate == nil {
		return
	}

	w.machine.SetDispatchView(candidate.ID, models.DispatchSending)
	fmt.Println("Sending...")

	started := time.Now()
	record, err := w.dispatcher.Dispatch(ctx, w.machine.SessionID(), candidate)
	if err != nil {
		w.machine.SetDispatchView(candidate.ID, models.DispatchIdle)
		fmt.Printf("Not sent: %v\n", err)
		return
	}

	w.obs.RecordDispatch(ctx, record.Status)
	w.obs.RecordDispatchDuration(ctx, time.Since(started), record.Status)
	w.machine.SetDispatchView(candidate.ID, record.Status)
	fmt.Println(record.Message)
}

func candidateLabel(c models.CandidateResult) string {
	badge := ""
	if c.LLMUsed != nil {
		if *c.LLMUsed {
			badge = " [AI]"
		} else {
			badge = " [regex]"
		}
	}
	sector := "IT"
	if len(c.Profile.SectorExperience) > 0 {
		sector = c.Profile.SectorExperience[0]
	}
	return fmt.Sprintf("%s - %d%% (%d yrs, %s)%s", c.Profile.Name, c.Score, c.Profile.ExperienceYears, sector, badge)
}

func confirm(label string) bool {
	_, answer, err := (&promptui.Select{Label: label, Items: []string{"Yes", "No"}}).Run()
	return err == nil && answer == "Yes"
}

func choose(label string, items []string) string {
	_, answer, err := (&promptui.Select{Label: label, Items: items}).Run()
	if err != nil {
		return PromptQuit
	}
	return answer
}

func askPath(label string) (string, error) {
	return (&promptui.Prompt{Label: label}).Run()
}
