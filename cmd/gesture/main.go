package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/drakos74/free-gesture/infra/config"
	"github.com/drakos74/free-gesture/internal/features"
	"github.com/drakos74/free-gesture/internal/metrics"
	"github.com/drakos74/free-gesture/internal/model"
	"github.com/drakos74/free-gesture/internal/sample"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// record is a single line of the samples file.
// Either the vector or the detected hand needs to be present.
type record struct {
	Label  string         `json:"label"`
	Vector []float64      `json:"vector"`
	Hand   *features.Hand `json:"hand"`
}

func (r record) vector() []float64 {
	if len(r.Vector) > 0 {
		return r.Vector
	}
	if r.Hand != nil {
		return r.Hand.Vector()
	}
	return []float64{}
}

type args struct {
	Command string `arg:"positional,required" help:"train | predict | list | info | delete"`
	Config  string `arg:"-c" help:"config file, defaults are used if empty"`
	Profile string `arg:"-p" help:"named config under infra/config e.g. 'gesture'"`
	Model   string `arg:"-m" help:"model name"`
	Samples string `arg:"-s" help:"json lines file with the labeled samples for training"`
	Input   string `arg:"-i" help:"json file with the sample to predict"`
	Metrics string `arg:"--metrics" help:"file to write the prometheus metrics to after the command"`
	Debug   bool   `arg:"-d"`
}

func main() {
	a := args{
		Model: "model",
	}
	arg.MustParse(&a)

	if a.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg := config.Default()
	switch {
	case a.Config != "":
		c, err := config.Load(a.Config)
		if err != nil {
			log.Fatal().Err(err).Str("config", a.Config).Msg("could not load config")
		}
		cfg = c
	case a.Profile != "":
		cfg = config.MustLoadProfile(a.Profile)
	}

	manager, err := model.NewManager(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create model manager")
	}
	m := metrics.New()
	if err := m.Register(prometheus.DefaultRegisterer); err != nil {
		log.Fatal().Err(err).Msg("could not register metrics")
	}
	manager.WithMetrics(m)

	result, err := run(manager, a)
	if dErr := dump(prometheus.DefaultGatherer, a.Metrics); dErr != nil {
		log.Error().Err(dErr).Str("file", a.Metrics).Msg("could not write metrics")
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", a.Command).Msg("command failed")
	}

	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("could not encode result")
	}
	fmt.Println(string(b))
}

func run(manager *model.Manager, a args) (interface{}, error) {
	switch a.Command {
	case "train":
		samples := sample.NewStore()
		if err := collect(manager, samples, a.Samples); err != nil {
			return nil, err
		}
		summary := samples.Summary()
		log.Info().Int("total", summary.Total).Str("labels", fmt.Sprintf("%+v", summary.PerLabel)).Msg("collected samples")
		return manager.Train(samples.Samples(), a.Model)
	case "predict":
		r, err := readInput(a.Input)
		if err != nil {
			return nil, err
		}
		return manager.Predict(r.vector(), a.Model)
	case "list":
		return list(manager)
	case "info":
		return manager.Info(a.Model)
	case "delete":
		return map[string]string{"deleted": a.Model}, manager.Delete(a.Model)
	default:
		return nil, fmt.Errorf("unknown command '%s'", a.Command)
	}
}

// dump logs the gesture metrics at debug level
// and writes all of them in the prometheus text format if a file is given.
func dump(g prometheus.Gatherer, fileName string) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("could not gather metrics: %w", err)
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "gesture_") {
			continue
		}
		log.Debug().Str("metric", mf.GetName()).Int("series", len(mf.GetMetric())).Msg("metrics")
	}
	if fileName == "" {
		return nil
	}
	return prometheus.WriteToTextfile(fileName, g)
}

// collect reads the samples file line by line into the sample store.
// Lines without usable features are skipped.
func collect(manager *model.Manager, samples *sample.Store, fileName string) error {
	f, err := os.Open(fileName)
	if err != nil {
		return fmt.Errorf("could not open samples file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var r record
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			return fmt.Errorf("could not decode line %d: %w", line, err)
		}
		if _, err := manager.Collect(samples, r.vector(), r.Label); err != nil {
			log.Warn().Err(err).Int("line", line).Msg("skipping sample")
		}
	}
	return scanner.Err()
}

func readInput(fileName string) (record, error) {
	var r record
	b, err := os.ReadFile(fileName)
	if err != nil {
		return r, fmt.Errorf("could not read input: %w", err)
	}
	if err := json.Unmarshal(b, &r); err != nil {
		return r, fmt.Errorf("could not decode input: %w", err)
	}
	return r, nil
}

type listing struct {
	Name     string   `json:"name"`
	Accuracy float64  `json:"accuracy"`
	Samples  int      `json:"n_samples"`
	Classes  []string `json:"classes"`
}

func list(manager *model.Manager) ([]listing, error) {
	names, err := manager.List()
	if err != nil {
		return nil, err
	}
	models := make([]listing, 0, len(names))
	for _, name := range names {
		info, err := manager.Info(name)
		if err != nil {
			log.Warn().Err(err).Str("model", name).Msg("could not load model info")
		}
		models = append(models, listing{
			Name:     name,
			Accuracy: info.Accuracy,
			Samples:  info.NSamples,
			Classes:  info.Classes,
		})
	}
	return models, nil
}
