package pipeline

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/netsim/topogen/internal/config"
	"github.com/netsim/topogen/internal/export"
	"github.com/netsim/topogen/internal/groundtruth"
	"github.com/netsim/topogen/internal/importer"
	"github.com/netsim/topogen/internal/location"
	"github.com/netsim/topogen/internal/population"
	"github.com/netsim/topogen/internal/storage"
)

// LoadInputs reads every input named by cfg, plus the optional simulation node
// file, and digests them for the run ID.
func LoadInputs(cfg *config.Config, simNodesPath string, logger *zap.Logger) (Inputs, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	digest := export.NewDigest()
	var in Inputs

	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return Inputs{}, fmt.Errorf("encoding config for digest: %w", err)
	}
	digest.Add("config", cfgJSON)

	if cfg.Debug.Enable {
		in.Cities, err = storage.ReadCities(cfg.Debug.CitiesFile)
		if err != nil {
			return Inputs{}, err
		}
		if err := digest.AddFile("cities", cfg.Debug.CitiesFile); err != nil {
			return Inputs{}, err
		}
		logger.Info("loaded debug cities", zap.String("file", cfg.Debug.CitiesFile), zap.Int("cities", len(in.Cities)))
	} else {
		in.Cities, err = loadSample(cfg)
		if err != nil {
			return Inputs{}, err
		}
		if err := digest.AddFile("cities", cfg.Cities.Database); err != nil {
			return Inputs{}, err
		}
		logger.Info("sampled cities",
			zap.String("database", cfg.Cities.Database),
			zap.Int64("min_population", cfg.Cities.MinPopulation),
			zap.Int("cities", len(in.Cities)))
	}

	if cfg.Population.GridFile != "" {
		in.Grid, err = population.LoadGrid(cfg.Population.GridFile)
		if err != nil {
			return Inputs{}, err
		}
		if err := digest.AddFile("population", cfg.Population.GridFile); err != nil {
			return Inputs{}, err
		}
		logger.Info("loaded population grid",
			zap.String("file", cfg.Population.GridFile),
			zap.Int("cols", in.Grid.Cols),
			zap.Int("rows", in.Grid.Rows))
	}

	if cfg.Seacable.Enabled() {
		in.Cables, err = groundtruth.Load(cfg.Seacable.LandingPointsFile, cfg.Seacable.CablesFile)
		if err != nil {
			return Inputs{}, err
		}
		if err := digest.AddFile("landing_points", cfg.Seacable.LandingPointsFile); err != nil {
			return Inputs{}, err
		}
		if err := digest.AddFile("cables", cfg.Seacable.CablesFile); err != nil {
			return Inputs{}, err
		}
		logger.Info("loaded cables",
			zap.Int("landing_points", len(in.Cables.LandingPoints)),
			zap.Int("cables", len(in.Cables.Cables)))
	}

	if simNodesPath != "" {
		in.SimNodes, err = importer.LoadSimNodes(simNodesPath)
		if err != nil {
			return Inputs{}, err
		}
		if err := digest.AddFile("sim_nodes", simNodesPath); err != nil {
			return Inputs{}, err
		}
		logger.Info("loaded simulation nodes", zap.Int("nodes", len(in.SimNodes)))
	}

	in.InputDigest = digest.Sum()
	return in, nil
}

func loadSample(cfg *config.Config) ([]location.Location, error) {
	db, err := storage.OpenExistingDB(cfg.Cities.Database)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	all, err := db.LoadCities(cfg.Cities.MinPopulation)
	if err != nil {
		return nil, err
	}
	return importer.SampleCities(all, cfg.Cities.SampleSize, cfg.Seed), nil
}
