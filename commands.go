package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/maastricht-university/voice-analysis/analysis"
	"github.com/maastricht-university/voice-analysis/clients"
	cfg "github.com/maastricht-university/voice-analysis/config"
	"github.com/maastricht-university/voice-analysis/store"
)

type app struct {
	configPath string
	v          *viper.Viper
	conf       *cfg.Root
	log        *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: cfg.NewViper(), log: logrus.New()}

	root := &cobra.Command{
		Use:          "voiceanalysis",
		Short:        "Speech timing and pitch statistics from audio recordings",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default config/$CONFIG_ENV/config.yaml)")
	pf.String("praat", "", "praat binary")
	pf.String("script", "", "analysis script passed to praat --run")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("db", "", "report history database")
	pf.String("outputs", "", "directory for report bundles")
	pf.Uint64("seed", 0, "random seed for the resampling tests (0 = random)")
	for key, flag := range map[string]string{
		"engine.binary":      "praat",
		"engine.script":      "script",
		"pipeline.log_level": "log-level",
		"paths.db":           "db",
		"paths.outputs":      "outputs",
		"classifier.seed":    "seed",
	} {
		_ = a.v.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(
		a.analyzeCmd(),
		a.valueCmd("stats", "Print the fourteen timing and pitch stats", func(an *analysis.Analyser) (any, error) {
			return an.Result()
		}),
		a.valueCmd("f0", "Print the fundamental frequency distribution (Hz)", func(an *analysis.Analyser) (any, error) {
			return an.F0Values()
		}),
		a.valueCmd("gender-mood", "Guess speaker gender and speaking mood", func(an *analysis.Analyser) (any, error) {
			return an.GenderMood()
		}),
		a.valueCmd("ppp", "Print the pronunciation posterior probability score (%)", func(an *analysis.Analyser) (any, error) {
			score, err := an.PPPScorePercentage()
			return map[string]float64{"ppp_score_percentage": score}, err
		}),
		a.historyCmd(),
		a.showCmd(),
	)
	return root
}

func (a *app) setup() error {
	var (
		conf *cfg.Root
		err  error
	)
	if a.configPath != "" {
		conf, err = cfg.LoadFile(a.configPath)
	} else {
		conf, err = cfg.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	conf.Overlay(a.v)
	a.conf = conf

	a.log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	lvl, err := logrus.ParseLevel(conf.Pipeline.LogLvl)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	a.log.SetLevel(lvl)
	return nil
}

func (a *app) analyser() (*analysis.Analyser, error) {
	entry := a.log.WithField("component", "analysis")
	praat := clients.NewPraat(a.conf.Engine.Binary, cfg.DurSeconds(a.conf.Engine.Timeout), entry)
	if !praat.Available() {
		return nil, fmt.Errorf("praat binary %q not found", praat.Binary)
	}
	return analysis.New(a.conf, praat, analysis.WithLogger(entry)), nil
}

func (a *app) start(cmd *cobra.Command, audioPath string) (*analysis.Analyser, error) {
	if abs, err := filepath.Abs(audioPath); err == nil {
		audioPath = abs
	}
	an, err := a.analyser()
	if err != nil {
		return nil, err
	}
	return an.Start(cmd.Context(), audioPath)
}

func (a *app) valueCmd(use, short string, get func(*analysis.Analyser) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <audio>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			an, err := a.start(cmd, args[0])
			if err != nil {
				return err
			}
			v, err := get(an)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), v)
		},
	}
}

func (a *app) analyzeCmd() *cobra.Command {
	var noStore bool
	cmd := &cobra.Command{
		Use:   "analyze <audio>",
		Short: "Run the full analysis and store the report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			an, err := a.start(cmd, args[0])
			if err != nil {
				return err
			}
			rep, err := an.Report()
			if err != nil {
				return err
			}
			log := a.log.WithField("analysis_id", rep.ID)

			if !noStore {
				path, err := analysis.Persist(a.conf.Paths.Outputs, rep)
				if err != nil {
					return err
				}
				log.WithField("path", path).Info("report written")

				s, err := store.Open(a.conf.Paths.DB)
				if err != nil {
					return err
				}
				defer s.Close()
				if err := s.Save(cmd.Context(), rep); err != nil {
					return err
				}
			}

			if url := a.conf.Services.Reports.URL; url != "" {
				resp, err := clients.NewHTTP().PublishReport(cmd.Context(), url, rep)
				if err != nil {
					log.WithError(err).Warn("publish failed")
				} else {
					log.WithField("status", resp.Status).Info("report published")
				}
			}

			log.WithField("took", time.Since(start).Round(time.Millisecond)).Debug("done")
			return printJSON(cmd.OutOrStdout(), rep)
		},
	}
	cmd.Flags().BoolVar(&noStore, "no-store", false, "skip writing the report bundle and history")
	return cmd
}

func (a *app) historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := store.Open(a.conf.Paths.DB)
			if err != nil {
				return err
			}
			defer s.Close()

			rows, err := s.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tGENDER\tMOOD\tF0 MEAN\tPPP\tAUDIO")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1f\t%.1f\t%s\n",
					r.ID, r.CreatedAt.Format(time.RFC3339), dash(r.Gender), dash(r.Mood), r.F0Mean, r.PPPScore, r.AudioPath)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of reports to list")
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.Open(a.conf.Paths.DB)
			if err != nil {
				return err
			}
			defer s.Close()

			rep, err := s.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rep)
		},
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
