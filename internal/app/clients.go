package app

import (
	"github.com/yellowpin/yellowpin-backend/internal/clients/assist"
	"github.com/yellowpin/yellowpin-backend/internal/clients/redis"
	"github.com/yellowpin/yellowpin-backend/internal/logger"
	"github.com/yellowpin/yellowpin-backend/internal/realtime/bus"
)

type Clients struct {
	Store  redis.Store
	Bus    bus.Bus
	Assist assist.Client
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	store, err := redis.NewStore(log)
	if err != nil {
		return Clients{}, err
	}

	fanoutBus, err := bus.NewRedisBus(log)
	if err != nil {
		_ = store.Close()
		return Clients{}, err
	}

	assistClient, err := assist.NewClient(log)
	if err != nil {
		log.Warn("Assist client unavailable; bot replies will degrade", "error", err)
		assistClient = assist.NewUnavailableClient(log)
	}

	return Clients{
		Store:  store,
		Bus:    fanoutBus,
		Assist: assistClient,
	}, nil
}

func (c Clients) Close() {
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
	if c.Store != nil {
		_ = c.Store.Close()
	}
}
