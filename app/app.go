package app

import (
	"github.com/go-chi/oauth"

	"github.com/geosurvey/geosurvey/config"
	"github.com/geosurvey/geosurvey/store"
)

type App struct {
	*store.Store
	*oauth.BearerServer
	config.Config
}
