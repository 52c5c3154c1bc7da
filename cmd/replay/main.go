// replay runs the calculation engine over a Home Assistant CSV history
// export and reports what the shading would have done: per-window duty
// cycle, peak power and received energy.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"solar_shading/internal/config"
	"solar_shading/internal/engine"
	"solar_shading/internal/history"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	historyPath := flag.String("history", "", "CSV file or directory of CSV files with entity history")
	stepMin := flag.Int("step", 15, "replay step size in minutes")
	verbose := flag.Bool("v", false, "print every replay step")
	flag.Parse()

	if *historyPath == "" {
		log.Fatal("-history is required")
	}

	tree, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store := history.NewStore()
	files, err := historyFiles(*historyPath)
	if err != nil {
		log.Fatalf("Failed to list history files: %v", err)
	}
	total := 0
	for _, path := range files {
		n, err := loadFile(store, path)
		if err != nil {
			log.Fatalf("Failed to load %s: %v", path, err)
		}
		total += n
	}
	log.Printf("Loaded %d readings from %d files, %d entities", total, len(files), len(store.Entities()))

	start, end, ok := store.TimeRange()
	if !ok {
		log.Fatal("History contains no readings")
	}
	log.Printf("Replaying %s to %s", start.Format(time.RFC3339), end.Format(time.RFC3339))

	cursor := store.Cursor(start)
	eng := engine.New(tree, cursor, nil)
	eng.SetClock(cursor.Time)

	stats := make(map[string]*windowStats)
	for _, id := range tree.WindowIDs() {
		stats[id] = &windowStats{}
	}

	step := time.Duration(*stepMin) * time.Minute
	steps := 0
	for t := start; !t.After(end); t = t.Add(step) {
		cursor.Seek(t)
		batch := eng.RunOnce()
		steps++

		for id, wr := range batch.Windows {
			st := stats[id]
			st.steps++
			if wr.ShadeRequired {
				st.shadingSteps++
			}
			if wr.TotalPower > st.peakPower {
				st.peakPower = wr.TotalPower
				st.peakAt = t
			}
			st.energyWh += wr.TotalPower * step.Hours()
		}

		if *verbose {
			fmt.Printf("%s  total %.1f W, %d/%d shading\n",
				t.Format("2006-01-02 15:04"), batch.Summary.TotalPower,
				batch.Summary.ShadingCount, batch.Summary.WindowCount)
		}
	}

	fmt.Printf("\n%-20s %8s %12s %18s %12s\n", "Window", "Duty", "Peak [W]", "Peak at", "Energy [kWh]")
	for _, id := range tree.WindowIDs() {
		st := stats[id]
		duty := 0.0
		if st.steps > 0 {
			duty = 100 * float64(st.shadingSteps) / float64(st.steps)
		}
		peakAt := "-"
		if !st.peakAt.IsZero() {
			peakAt = st.peakAt.Format("01-02 15:04")
		}
		fmt.Printf("%-20s %7.1f%% %12.1f %18s %12.2f\n",
			id, duty, st.peakPower, peakAt, st.energyWh/1000)
	}
	fmt.Printf("\n%d steps of %s replayed\n", steps, step)
}

type windowStats struct {
	steps        int
	shadingSteps int
	peakPower    float64
	peakAt       time.Time
	energyWh     float64
}

// historyFiles expands a path into the list of CSV files to load.
func historyFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("no CSV files in %s", path)
	}
	return files, nil
}

func loadFile(store *history.Store, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	readings, err := history.ParseCSV(f)
	if err != nil {
		return 0, err
	}
	store.Add(readings)
	return len(readings), nil
}
