package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/blackicons2020/skillskonnect-sub001/internal/domain"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/database"
)

// liveSubscriptionIndex keeps at most one active or paused subscription per client.
const liveSubscriptionIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_subscriptions_live_client
	ON subscriptions (client_id) WHERE status IN ('active', 'paused')`

// Migrate creates or updates every table and the indexes GORM tags cannot express.
// MySQL has no partial indexes; there the row lock taken by
// GormSubscriptionRepository.Create is the only guard.
func Migrate(db *gorm.DB) error {
	if err := database.AutoMigrate(db, domain.Models()...); err != nil {
		return err
	}

	switch db.Dialector.Name() {
	case "postgres", "sqlite":
		if err := db.Exec(liveSubscriptionIndex).Error; err != nil {
			return fmt.Errorf("create live subscription index: %w", err)
		}
	}
	return nil
}
