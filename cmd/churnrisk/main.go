// Command churnrisk trains a churn model on a pair of CSV datasets and
// prints the predicted churn rate, the SHAP contribution table, and the
// partial-dependence explanations for a test row or for the whole test
// population.
//
// Configuration comes from CHURN_* environment variables; flags override.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"

	"github.com/UjjwalMahar/churn-risk/churn"
	"github.com/UjjwalMahar/churn-risk/pkg/log"
)

type config struct {
	Train       string `envconfig:"CHURN_TRAIN"`
	Test        string `envconfig:"CHURN_TEST"`
	Target      string `envconfig:"CHURN_TARGET" default:"Churn"`
	Categorical string `envconfig:"CHURN_CATEGORICAL"`
	Drop        string `envconfig:"CHURN_DROP"`
	LogLevel    string `envconfig:"CHURN_LOG_LEVEL" default:"info"`
}

func main() {
	var cfg config
	if err := envconfig.Process("", &cfg); err != nil {
		fmt.Fprintln(os.Stderr, "churnrisk:", err)
		os.Exit(1)
	}

	flag.StringVar(&cfg.Train, "train", cfg.Train, "path of the training CSV")
	flag.StringVar(&cfg.Test, "test", cfg.Test, "path of the test CSV")
	flag.StringVar(&cfg.Target, "target", cfg.Target, "target column name")
	flag.StringVar(&cfg.Categorical, "categorical", cfg.Categorical, "comma-separated categorical columns")
	flag.StringVar(&cfg.Drop, "drop", cfg.Drop, "comma-separated columns to drop from the feature set")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	row := flag.Int("row", churn.AllRows, "test row to explain; -1 for the population")
	plotPath := flag.String("plot", "", "write the negative explanation chart to this PNG file")
	modelPath := flag.String("save-model", "", "write the fitted model to this file")
	flag.Parse()

	logger := log.NewConsoleLogger(os.Stderr, log.ParseLevel(cfg.LogLevel))
	log.SetDefault(logger)

	if cfg.Train == "" || cfg.Test == "" {
		fmt.Fprintln(os.Stderr, "churnrisk: -train and -test are required")
		flag.Usage()
		os.Exit(2)
	}

	predictor, err := churn.New(churn.Config{
		TrainPath:          cfg.Train,
		TestPath:           cfg.Test,
		TargetColumn:       cfg.Target,
		CategoricalColumns: splitList(cfg.Categorical),
		DropColumns:        splitList(cfg.Drop),
	})
	if err != nil {
		logger.Error("building predictor failed", log.ErrAttrKey, err)
		os.Exit(1)
	}

	if err := run(predictor, *row, *plotPath, *modelPath); err != nil {
		logger.Error("query failed", log.ErrAttrKey, err)
		os.Exit(1)
	}
}

func run(predictor *churn.Predictor, row int, plotPath, modelPath string) error {
	rate, err := predictor.ChurnRate(row)
	if err != nil {
		return err
	}
	subject := "population"
	if row != churn.AllRows {
		subject = "row " + strconv.Itoa(row)
	}
	fmt.Printf("Churn rate (%s): %.2f%%\n\n", subject, rate)

	shap, err := predictor.SHAP(row)
	if err != nil {
		return err
	}
	renderContributions("Feature contributions", shap)

	negative, err := predictor.NegativeExplanation(row, "")
	if err != nil {
		return err
	}
	renderExplanationTable("Top retention driver", negative)

	positive, err := predictor.PositiveExplanation(row, "")
	if err != nil {
		return err
	}
	renderExplanationTable("Top churn driver", positive)

	renderContributions("Feature importance (gain)", predictor.FeatureImportance())

	if plotPath != "" {
		f, err := os.Create(plotPath)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := churn.RenderExplanation(f, negative); err != nil {
			return err
		}
	}
	if modelPath != "" {
		return predictor.SaveModel(modelPath)
	}
	return nil
}

func renderContributions(title string, rows []churn.Contribution) {
	fmt.Println(title)
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Feature", "Value"})
	for _, c := range rows {
		table.Append([]string{c.Feature, strconv.FormatFloat(c.Value, 'f', 6, 64)})
	}
	table.Render()
	fmt.Println()
}

func renderExplanationTable(title string, e *churn.Explanation) {
	fmt.Printf("%s: %s\n", title, e.Feature)
	if e.Empty() {
		fmt.Println("(no observable values)")
		return
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Bin", "Effect", "Population"})
	for _, b := range e.Bins {
		table.Append([]string{
			b.Label,
			strconv.FormatFloat(b.Effect, 'f', 4, 64),
			strconv.Itoa(b.Count),
		})
	}
	table.Render()
	fmt.Println()
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
