package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bibbank/fraudml/internal/application/dto"
	"github.com/bibbank/fraudml/internal/application/usecase"
	"github.com/bibbank/fraudml/internal/domain/model"
	"github.com/bibbank/fraudml/internal/domain/service"
	"github.com/bibbank/fraudml/internal/domain/valueobject"
	"github.com/bibbank/fraudml/internal/infrastructure/filestore"
	"github.com/bibbank/fraudml/internal/infrastructure/inference"
)

func (a *app) synthesizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "synthesize",
		Short: "Generate the synthetic transaction dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := dto.GenerateDatasetRequest{
				Samples:   a.cfg.Samples,
				FraudRate: a.cfg.FraudRate,
				Seed:      a.cfg.Seed,
			}
			if cmd.Flags().Changed("samples") {
				req.Samples, _ = cmd.Flags().GetInt("samples")
			}
			if cmd.Flags().Changed("fraud-rate") {
				req.FraudRate, _ = cmd.Flags().GetFloat64("fraud-rate")
			}
			if cmd.Flags().Changed("seed") {
				req.Seed, _ = cmd.Flags().GetInt64("seed")
			}

			uc := usecase.NewGenerateDataset(a.transactionStore(), a.logger)
			resp, err := uc.Execute(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out(cmd), "Wrote %d transactions (%d fraudulent) to %s\n",
				resp.Rows, resp.FraudRows, a.cfg.TransactionsPath())
			return nil
		},
	}

	cmd.Flags().Int("samples", 2000, "number of transactions to generate")
	cmd.Flags().Float64("fraud-rate", 0.02, "probability that a transaction is fraudulent")
	cmd.Flags().Int64("seed", 42, "random seed")

	return cmd
}

func (a *app) featuresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "features",
		Short: "Build the feature table from the transaction dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := usecase.NewBuildFeatures(a.transactionStore(), a.featureStore(), service.NewFeatureBuilder(), a.logger)
			resp, err := uc.Execute(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out(cmd), "Wrote %d feature rows across %d locations to %s\n",
				resp.Rows, resp.Locations, a.cfg.FeaturesPath())
			return nil
		},
	}
}

func (a *app) trainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Train the classifier and write the held-out partition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			splitter, err := service.NewStratifiedSplitter(a.cfg.TestSize, a.cfg.Seed)
			if err != nil {
				return fmt.Errorf("invalid split config: %w", err)
			}
			trainer, err := service.NewLogisticRegressionTrainer(service.DefaultTrainerConfig(), a.logger)
			if err != nil {
				return fmt.Errorf("invalid trainer config: %w", err)
			}
			publisher, closePublisher, err := a.publisher()
			if err != nil {
				return err
			}
			defer closePublisher()

			uc := usecase.NewTrainModel(a.featureStore(), a.heldOutStore(), a.modelStore(), publisher, splitter, trainer, a.logger)
			resp, err := uc.Execute(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out(cmd), "Trained model %s on %d rows (%d held out), saved to %s\n",
				resp.ModelID, resp.TrainingRows, resp.HeldOutRows, resp.ModelPath)
			return nil
		},
	}
}

func (a *app) evaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score the model on the held-out partition and apply the F1 quality gate",
		Long: `Score the trained model on the held-out partition, write the metrics file and
apply the quality gate. Exits non-zero when the F1 score is below the threshold.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			threshold := a.cfg.F1Threshold
			if cmd.Flags().Changed("threshold") {
				threshold, _ = cmd.Flags().GetFloat64("threshold")
			}
			gate, err := valueobject.NewQualityGate(model.MetricF1Score, threshold)
			if err != nil {
				return err
			}

			publisher, closePublisher, err := a.publisher()
			if err != nil {
				return err
			}
			defer closePublisher()

			// History is optional. An unreachable database must not cost the
			// metrics file or the gate verdict.
			repo, closeRepo, err := a.evaluationRuns(cmd.Context())
			if err != nil {
				a.logger.Warn("evaluation history unavailable, run will not be recorded", "error", err)
				repo, closeRepo = nil, func() {}
			}
			defer closeRepo()

			uc := usecase.NewEvaluateModel(a.modelStore(), a.heldOutStore(), filestore.NewMetricsJSON(a.cfg.MetricsPath), repo, publisher, gate, a.logger)
			resp, err := uc.Execute(cmd.Context())
			if err != nil && !errors.Is(err, usecase.ErrQualityGateFailed) {
				return err
			}

			fmt.Fprintf(a.out(cmd), "Metrics written to %s\n", a.cfg.MetricsPath)
			for _, name := range model.MetricNames {
				fmt.Fprintf(a.out(cmd), "  %-10s %.4f\n", name, resp.Metrics[name])
			}
			if err != nil {
				fmt.Fprintf(a.out(cmd), "Quality gate FAILED: %s = %.4f, required %s\n", resp.GateMetric, resp.GateValue, gate)
				return err
			}
			fmt.Fprintf(a.out(cmd), "Quality gate passed: %s = %.4f\n", resp.GateMetric, resp.GateValue)
			return nil
		},
	}

	cmd.Flags().Float64("threshold", 0.7, "minimum F1 score")

	return cmd
}

func (a *app) validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a deployed inference service against the held-out labels",
		Long: `Send every held-out feature vector to the inference service in a single
request and compare the returned labels with the local ones. Exits non-zero
when accuracy is below the threshold or the service cannot be scored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			endpoint := a.cfg.InferenceURL
			if cmd.Flags().Changed("url") {
				endpoint, _ = cmd.Flags().GetString("url")
			}
			threshold := a.cfg.AccuracyThreshold
			if cmd.Flags().Changed("threshold") {
				threshold, _ = cmd.Flags().GetFloat64("threshold")
			}
			timeout := a.cfg.ValidationTimeout
			if cmd.Flags().Changed("timeout") {
				timeout, _ = cmd.Flags().GetDuration("timeout")
			}

			publisher, closePublisher, err := a.publisher()
			if err != nil {
				return err
			}
			defer closePublisher()

			client := inference.NewHTTPClient(endpoint, timeout)
			uc := usecase.NewValidateStaging(a.heldOutStore(), client, publisher, threshold, a.logger)
			resp, err := uc.Execute(cmd.Context())
			if err != nil && !errors.Is(err, usecase.ErrStagingRejected) {
				return err
			}

			fmt.Fprintf(a.out(cmd), "Staging accuracy: %.4f (%d/%d correct)\n", resp.Accuracy, resp.Correct, resp.Records)
			if err != nil {
				fmt.Fprintf(a.out(cmd), "REJECTED: accuracy below %.2f\n", resp.Threshold)
				return err
			}
			fmt.Fprintln(a.out(cmd), "APPROVED")
			return nil
		},
	}

	cmd.Flags().String("url", "http://localhost:5001/predict", "inference /predict endpoint")
	cmd.Flags().Float64("threshold", 0.90, "minimum accuracy")
	cmd.Flags().Duration("timeout", time.Duration(0), "HTTP timeout (0 waits indefinitely)")

	return cmd
}
