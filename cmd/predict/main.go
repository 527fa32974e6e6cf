package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"grocerysales/display"
	"grocerysales/inference"
	"grocerysales/logging"
	"grocerysales/ml"
	"grocerysales/schema"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	record := schema.DefaultRecord()

	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	fs.SetOutput(stderr)
	modelType := fs.String("model_type", ml.ModelRandomForest, "model type stored in the artifact")
	modelPath := fs.String("model_path", "./models/sales_forest.json", "model artifact path")
	logLevel := fs.String("log_level", "warn", "log level")
	symbol := fs.String("currency_symbol", "$", "currency symbol for the result line")
	fs.StringVar(&record.ItemIdentifier, "item_identifier", record.ItemIdentifier, "Item_Identifier")
	fs.StringVar(&record.ItemFatContent, "item_fat_content", record.ItemFatContent, "Item_Fat_Content")
	fs.StringVar(&record.ItemType, "item_type", record.ItemType, "Item_Type")
	fs.StringVar(&record.OutletIdentifier, "outlet_identifier", record.OutletIdentifier, "Outlet_Identifier")
	fs.StringVar(&record.OutletSize, "outlet_size", record.OutletSize, "Outlet_Size")
	fs.StringVar(&record.OutletLocationType, "outlet_location_type", record.OutletLocationType, "Outlet_Location_Type")
	fs.StringVar(&record.OutletType, "outlet_type", record.OutletType, "Outlet_Type")
	fs.Float64Var(&record.ItemWeight, "item_weight", record.ItemWeight, "Item_Weight")
	fs.Float64Var(&record.ItemMRP, "item_mrp", record.ItemMRP, "Item_MRP")
	fs.Float64Var(&record.ItemVisibility, "item_visibility", record.ItemVisibility, "Item_Visibility")
	fs.IntVar(&record.OutletEstablishmentYear, "outlet_establishment_year", record.OutletEstablishmentYear, "Outlet_Establishment_Year")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger, closeLog, err := logging.New(logging.Config{Level: *logLevel, Format: "console"})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	defer closeLog()

	if err := record.Validate(); err != nil {
		var ve *schema.ValidationError
		if errors.As(err, &ve) {
			for _, v := range ve.Violations {
				fmt.Fprintf(stderr, "%s: %s\n", v.Field, v.Message)
			}
		} else {
			fmt.Fprintln(stderr, err)
		}
		return 2
	}

	formatter, err := display.NewFormatter("en-US", *symbol)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	adapter, err := inference.Open(*modelType, *modelPath, logger)
	if err != nil {
		logger.Error("failed to load model", zap.String("path", *modelPath), zap.Error(err))
		adapter = inference.Unavailable(err, logger)
	}

	sales, err := adapter.Predict(record)
	if err != nil {
		fmt.Fprintln(stdout, formatter.Failure(err))
		return 1
	}
	fmt.Fprintln(stdout, formatter.Sales(sales))
	return 0
}
