package seeds

import (
	"context"
	_ "embed"
	"os"

	"gorm.io/gorm"

	"dancestudio_backend/internals/seeds/studios"
)

//go:embed studios/data_studios.json
var defaultStudios []byte

// RunAllSeeds seeds the studios from filePath, or the bundled demo data when
// filePath is empty.
func RunAllSeeds(ctx context.Context, db *gorm.DB, filePath string) (studios.Result, error) {
	data := defaultStudios
	if filePath != "" {
		raw, err := os.ReadFile(filePath)
		if err != nil {
			return studios.Result{}, err
		}
		data = raw
	}
	return studios.SeedStudiosFromJSON(ctx, db, data)
}
