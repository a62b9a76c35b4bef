package service

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/pharmaguard-server/internal/domain"
)

// testLogger returns a logger that discards output, keeping test runs quiet.
func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// markerVariant builds a variant straight off the curated marker table.
func markerVariant(rsid, genotype string) domain.Variant {
	marker := domain.Markers[rsid]
	return domain.Variant{
		RSID:              rsid,
		Gene:              marker.Gene,
		Allele:            marker.Allele,
		Function:          marker.Function,
		CPICLevel:         marker.CPICLevel,
		Genotype:          genotype,
		Zygosity:          domain.ParseZygosity(genotype),
		HasRSIDAnnotation: true,
	}
}
