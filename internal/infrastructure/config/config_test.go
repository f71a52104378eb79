package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.StoreDriver != StoreMongo || !cfg.IsDevelopment() {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Mongo.EventsTable != "events" || cfg.Mongo.UsersTable != "users" || cfg.Mongo.RegistrationsTable != "registrations" {
		t.Errorf("unexpected tables: %+v", cfg.Mongo)
	}
	if cfg.Purchase.NotifyStream != "" || cfg.Purchase.DetailedConflicts || cfg.Purchase.DispatchWorkers != 8 {
		t.Errorf("unexpected purchase config: %+v", cfg.Purchase)
	}
	if cfg.Receipt.Block != 5*time.Second || cfg.Receipt.MaxDeliveries != 5 {
		t.Errorf("unexpected receipt config: %+v", cfg.Receipt)
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"PORT":                        "9090",
		"ENV":                         "production",
		"STORE_DRIVER":                "memory",
		"EVENTS_TABLE":                "Eventos",
		"NOTIFY_STREAM":               "receipts.fifo",
		"PURCHASE_DETAILED_CONFLICTS": "true",
		"SMTP_PORT":                   "2525",
		"RECEIPT_MIN_IDLE":            "1m",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" || cfg.IsDevelopment() || cfg.StoreDriver != StoreMemory {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Mongo.EventsTable != "Eventos" || cfg.Purchase.NotifyStream != "receipts.fifo" || !cfg.Purchase.DetailedConflicts {
		t.Errorf("unexpected overrides: %+v %+v", cfg.Mongo, cfg.Purchase)
	}
	if cfg.Mail.Port != 2525 || cfg.Receipt.MinIdle != time.Minute {
		t.Errorf("unexpected mail/receipt: %+v %+v", cfg.Mail, cfg.Receipt)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	_, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{"STORE_DRIVER": "dynamo"}))
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestLoadRejectsBadNumber(t *testing.T) {
	_, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{"DISPATCH_WORKERS": "many"}))
	if err == nil {
		t.Fatal("expected error for non-numeric DISPATCH_WORKERS")
	}
}
