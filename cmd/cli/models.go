package main

import (
	"fmt"

	"safetyhub/internal/ml"
	"safetyhub/internal/transform"

	"github.com/spf13/cobra"
)

// inputFlags are shared by the commands that read a table.
type inputFlags struct {
	input  string
	sheet  string
	output string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "Input file (.json records, .csv, .xlsx or .xlsm)")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "Workbook sheet to read (default: first sheet)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Write JSON output to this file instead of stdout")
	cmd.MarkFlagRequired("input")
}

func newProcessCmd() *cobra.Command {
	var in inputFlags
	var opts transform.Options

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Clean, normalize and encode a table and print its summary statistics",
		Long: `Apply the selected transforms in clean, normalize, encode order and print the
processed records together with summary statistics.

Example: safetyhub process -i incidents.csv --clean --encode-categorical`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readTable(in.input, in.sheet)
			if err != nil {
				return err
			}
			result, err := transform.Process(data, opts)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), in.output, result)
		},
	}

	in.register(cmd)
	cmd.Flags().BoolVar(&opts.Clean, "clean", false, "Drop duplicates, impute missing values and remove outliers")
	cmd.Flags().BoolVar(&opts.Normalize, "normalize", false, "Standardize numeric columns to zero mean and unit variance")
	cmd.Flags().BoolVar(&opts.EncodeCategorical, "encode-categorical", false, "Label-encode text columns")
	return cmd
}

func newTrainCmd() *cobra.Command {
	var in inputFlags
	var target, modelType, algorithm, modelPath string
	var testFraction float64

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a model and save it",
		Long: `Train a regression or classification model on every column except the target,
report its held-out score and save it for later predictions.

Example: safetyhub train -i incidents.csv --target cost --algorithm linear --model model.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readTable(in.input, in.sheet)
			if err != nil {
				return err
			}
			if !data.HasColumn(target) {
				return fmt.Errorf("target column %s not found in data", target)
			}

			model, err := ml.Select(modelType, algorithm)
			if err != nil {
				return err
			}
			score, err := model.Train(data, target, testFraction)
			if err != nil {
				return err
			}
			if err := model.SaveFile(modelPath); err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), in.output, map[string]interface{}{
				"score":      score,
				"model_type": model.Type(),
				"algorithm":  model.Algorithm().String(),
				"model_path": modelPath,
			})
		},
	}

	in.register(cmd)
	cmd.Flags().StringVar(&target, "target", "", "Target column")
	cmd.Flags().StringVar(&modelType, "model-type", string(ml.Regression), "Model type: regression|classification")
	cmd.Flags().StringVar(&algorithm, "algorithm", ml.RandomForest.String(), "Algorithm: random_forest|linear|logistic")
	cmd.Flags().StringVar(&modelPath, "model", "model.json", "Where to save the trained model")
	cmd.Flags().Float64Var(&testFraction, "test-fraction", ml.DefaultTestFraction, "Share of rows held out for scoring")
	cmd.MarkFlagRequired("target")
	return cmd
}

func newCompareCmd() *cobra.Command {
	var in inputFlags
	var target, modelType string

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the candidate algorithms on one split",
		Long: `Train every candidate algorithm for the model type on the same seeded split
and report each held-out score with the best model.

Example: safetyhub compare -i trainings.xlsx --target completion_status --model-type classification`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readTable(in.input, in.sheet)
			if err != nil {
				return err
			}
			comparison, err := ml.Compare(data, target, modelType)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), in.output, comparison)
		},
	}

	in.register(cmd)
	cmd.Flags().StringVar(&target, "target", "", "Target column")
	cmd.Flags().StringVar(&modelType, "model-type", string(ml.Regression), "Model type: regression|classification")
	cmd.MarkFlagRequired("target")
	return cmd
}

func newPredictCmd() *cobra.Command {
	var in inputFlags
	var modelPath string
	var trainedScaling bool

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict every row of a table with a saved model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readTable(in.input, in.sheet)
			if err != nil {
				return err
			}
			model, err := ml.LoadFile(modelPath)
			if err != nil {
				return err
			}
			if trainedScaling {
				model.Scaling = ml.ScalingTrained
			}
			predictions, err := model.Predict(data)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), in.output, map[string]interface{}{
				"predictions": predictions,
			})
		},
	}

	in.register(cmd)
	cmd.Flags().StringVar(&modelPath, "model", "model.json", "Saved model file")
	cmd.Flags().BoolVar(&trainedScaling, "trained-scaling", false, "Scale inputs with the scaler fitted at training time")
	return cmd
}
