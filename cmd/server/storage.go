package main

import (
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/marquee/internal/config"
	"github.com/Nixie-Tech-LLC/marquee/internal/storage"
)

// InitStorage selects and returns the configured export backend
func InitStorage(cfg *config.Config) storage.Storage {
	if cfg.UseSpaces {
		spacesStorage, err := storage.NewSpacesStorage(
			cfg.SpacesEndpoint,
			cfg.SpacesRegion,
			cfg.SpacesBucket,
			cfg.SpacesCDNURL,
			cfg.SpacesAccessKey,
			cfg.SpacesSecretKey,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Spaces storage")
		}
		log.Info().Str("cdn", cfg.SpacesCDNURL).Msg("Using DigitalOcean Spaces storage for exports")
		return spacesStorage
	}

	log.Info().Str("dir", cfg.ExportDir).Msg("Using local file storage for exports")
	return storage.NewLocalStorage(cfg.ExportDir)
}
