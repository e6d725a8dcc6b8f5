package main

import (
	"compress/gzip"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

type sampleCoupon struct {
	code    string
	percent int
}

// Writes seasonal coupon tables for local runs. Point COUPON_FILES at the
// generated files; later files override earlier ones on duplicate codes.
func main() {
	dataDir := "data/coupons"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	tables := map[string][]sampleCoupon{
		"festive.gz": {
			{"CHHATH15", 15},
			{"DIWALI25", 25},
			{"HOLI12", 12},
		},
		"artisans.gz": {
			{"MADHUBANI30", 30},
			{"SIKKI10", 10},
			{"CRAFT20", 25}, // overrides the built-in 20%
		},
	}

	for filename, coupons := range tables {
		filePath := filepath.Join(dataDir, filename)

		if err := createCouponFile(filePath, coupons); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d codes\n", filePath, len(coupons))
	}

	fmt.Println("\nSample coupon files created successfully!")
	fmt.Println("\nUse them with:")
	fmt.Printf("  COUPON_FILES=%s,%s\n",
		filepath.Join(dataDir, "festive.gz"),
		filepath.Join(dataDir, "artisans.gz"))
}

func createCouponFile(filePath string, coupons []sampleCoupon) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	for _, c := range coupons {
		if _, err := fmt.Fprintf(gzipWriter, "%s,%d\n", c.code, c.percent); err != nil {
			return fmt.Errorf("failed to write coupon: %w", err)
		}
	}

	return nil
}
