package discord

import (
	"fmt"
	"log"
)

// startMaintenance fills the cache from the store, then starts the periodic
// reload and sweep loops.
func (b *Bot) startMaintenance() error {
	if _, err := b.maintenance.Reload(b.ctx); err != nil {
		log.Printf("⚠️ Chargement initial du cache incomplet: %v", err)
	}
	if err := b.scheduler.Start(b.ctx); err != nil {
		return fmt.Errorf("démarrage de la maintenance: %w", err)
	}
	return nil
}

// stopMaintenance stops the loops and cancels in-flight handlers.
func (b *Bot) stopMaintenance() {
	if err := b.scheduler.Stop(); err != nil {
		log.Printf("❌ Arrêt de la maintenance: %v", err)
	}
	b.cancel()
}
