package analysis

import (
	"gorm.io/gorm"

	"github.com/matth2611/Holy-navigator/internal/db"
)

func Init(d *gorm.DB) error {
	return db.Migrate(d, "app_analysis", &Analysis{})
}
