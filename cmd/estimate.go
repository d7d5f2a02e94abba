package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/grass-estimator/internal/model"
	"github.com/sells-group/grass-estimator/internal/selection"
	"github.com/sells-group/grass-estimator/internal/workflow"
)

var (
	estimatePhotos  []string
	estimateObject  string
	estimateHeight  float64
	estimateSession string
	estimateFormat  string
	estimateNotify  bool
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Submit property photos and print the lawn estimate",
	Example: `  grass-estimator estimate --photo front.jpg --photo back.jpg
  grass-estimator estimate --photo yard.png --object "wheelie bin" --height 1.1 --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		switch estimateFormat {
		case formatText, formatJSON, formatYAML:
		default:
			return eris.Errorf("unknown output format %q", estimateFormat)
		}

		if estimateNotify {
			cfg.Notify.Enabled = true
		}

		images, err := selection.Open(ctx, estimatePhotos)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx, "estimate")
		if err != nil {
			return err
		}
		defer env.Close()

		sess := workflow.NewSession(estimateSession, env.Store, env.Pricing)
		defer sess.Teardown()

		opts := []workflow.Option{
			workflow.WithBuilder(env.Builder),
			workflow.WithObserver(func(st workflow.State) {
				zap.L().Debug("workflow transition",
					zap.String("session", sess.ID),
					zap.String("status", string(st.Status)),
				)
			}),
		}
		if env.Notifier != nil {
			opts = append(opts, workflow.WithNotifier(env.Notifier))
		}
		m := workflow.NewMachine(sess, env.Submitter, opts...)

		var ref *model.ReferenceObject
		if estimateObject != "" || estimateHeight != 0 {
			ref = &model.ReferenceObject{Name: estimateObject, HeightMeters: estimateHeight}
		}

		st, err := m.Estimate(ctx, images, ref)
		if err != nil {
			return err
		}

		if err := render(cmd.OutOrStdout(), st, estimateFormat, env.Formatter); err != nil {
			return err
		}

		if st.Status != workflow.StatusSuccess {
			return eris.New(st.Error)
		}
		return nil
	},
}

func init() {
	estimateCmd.Flags().StringArrayVar(&estimatePhotos, "photo", nil, "photo to upload (repeatable, first three are used)")
	estimateCmd.Flags().StringVar(&estimateObject, "object", "", "reference object visible in the photos")
	estimateCmd.Flags().Float64Var(&estimateHeight, "height", 0, "reference object height in metres")
	estimateCmd.Flags().StringVar(&estimateSession, "session", "local", "session ID the contact profile is stored under")
	estimateCmd.Flags().StringVar(&estimateFormat, "format", formatText, "output format: text, json or yaml")
	estimateCmd.Flags().BoolVar(&estimateNotify, "notify", false, "email the stored contact a confirmation")
	rootCmd.AddCommand(estimateCmd)
}
