// suggest corre el motor de sugerencias sin servidor ni base de datos:
// lee un historial en CSV, ajusta los modelos en memoria y muestra la
// sugerencia para el dia indicado.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/aefremenko24/quantifying-happiness/internal/domain"
	"github.com/aefremenko24/quantifying-happiness/internal/engine"
	"github.com/aefremenko24/quantifying-happiness/internal/service"
)

func main() {
	var (
		csvPath    = flag.String("csv", "", "ruta al historial en CSV")
		dayStr     = flag.String("day", "", "dia de partida (YYYY-MM-DD)")
		iterations = flag.Int("iterations", engine.DefaultMaxIterations, "iteraciones del recocido")
		restarts   = flag.Int("restarts", 1, "reinicios independientes")
		seed       = flag.Int64("seed", 0, "semilla fija (0 usa una no determinista)")
	)
	flag.Parse()

	if *csvPath == "" || *dayStr == "" {
		flag.Usage()
		os.Exit(2)
	}

	day, err := time.Parse(domain.DayFormat, *dayStr)
	if err != nil {
		log.Fatalf("invalid day: %v", err)
	}

	file, err := os.Open(*csvPath)
	if err != nil {
		log.Fatalf("open csv: %v", err)
	}
	defer file.Close()

	dataset, err := service.ParseEntriesCSV(file)
	if err != nil {
		log.Fatalf("parse csv: %v", err)
	}

	var start *domain.SatisfactionEntry
	var scored []domain.MetricVector
	for i := range dataset {
		if dataset[i].Day.Equal(day) {
			start = &dataset[i]
		}
		if dataset[i].Score.Known() {
			scored = append(scored, dataset[i].Metrics)
		}
	}
	if start == nil {
		log.Fatalf("day %s not found in %s", *dayStr, *csvPath)
	}

	scaler, err := engine.NewFeatureScaler().Fit(scored)
	if err != nil {
		log.Fatalf("fit scaler: %v", err)
	}
	regressor, err := engine.NewKNNRegressor(engine.DefaultNeighbors).Fit(dataset, scaler)
	if err != nil {
		log.Fatalf("fit regressor: %v", err)
	}

	source := rand.NewSource(time.Now().UnixNano())
	if *seed != 0 {
		source = rand.NewSource(*seed)
	}
	optimizer, err := engine.NewAnnealingOptimizer(dataset, scaler, regressor, engine.AnnealerConfig{
		MaxIterations: *iterations,
		NumRestarts:   *restarts,
	}, rand.New(source))
	if err != nil {
		log.Fatalf("build optimizer: %v", err)
	}

	best, history, err := optimizer.Optimize(*start)
	if err != nil {
		log.Fatalf("optimize: %v", err)
	}

	startValue, _ := start.Score.Value()
	fmt.Printf("day %s: score %.2f -> predicted %.2f (%d accepted candidates)\n",
		*dayStr, startValue, best.Value, len(history))
	for i, name := range domain.MetricNames {
		delta := best.Metrics[i] - start.Metrics[i]
		fmt.Printf("  %-22s %10.1f -> %10.1f (%+.1f)\n", name, start.Metrics[i], best.Metrics[i], delta)
	}
}
