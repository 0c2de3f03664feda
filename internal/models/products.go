package models

import (
	"fmt"
	"path/filepath"
	"strconv"
)

// Raster product names emitted by the gridding writer, one per cell statistic
const (
	ProductDensity = "den"
	ProductMin     = "min"
	ProductMax     = "max"
	ProductIDW     = "idw"
	ProductStd     = "std"
)

// DEM types
const (
	DemTypeDensity = "density"
	DemTypeDSM     = "dsm"
	DemTypeDTM     = "dtm"
)

// DemProducts returns the default product set for a DEM type.
// Density is a diagnostic product carried by every type; surface models add
// the statistics a canopy workflow consumes downstream.
func DemProducts(demtype string) []string {
	switch demtype {
	case DemTypeDSM:
		return []string{ProductDensity, ProductMax}
	case DemTypeDTM:
		return []string{ProductDensity, ProductMin, ProductMax, ProductIDW}
	default:
		return []string{ProductDensity}
	}
}

// ValidDemType reports whether demtype is one of the known DEM types
func ValidDemType(demtype string) bool {
	switch demtype {
	case DemTypeDensity, DemTypeDSM, DemTypeDTM:
		return true
	}
	return false
}

// FormatParam renders a numeric classification parameter the way it appears
// in filenames and engine arguments (no trailing zeros)
func FormatParam(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ClassifiedName returns the deterministic filename for a classified point
// file. The name encodes every parameter that changes the result, so the
// filename doubles as the cache key.
func ClassifiedName(basename string, slope, cellsize float64, suffix string) string {
	prefix := ""
	if basename != "" {
		prefix = basename + "_"
	}
	return fmt.Sprintf("%sclassified_s%sc%s%s.las", prefix, FormatParam(slope), FormatParam(cellsize), suffix)
}

// DemBaseName returns the deterministic per-(demtype, radius) output base,
// without a product extension. The gridding writer appends ".{product}.tif".
func DemBaseName(outDir, basename, demtype, radius, suffix string) string {
	prefix := ""
	if basename != "" {
		prefix = basename + "_"
	}
	return filepath.Join(outDir, fmt.Sprintf("%s%s_r%s%s", prefix, demtype, radius, suffix))
}

// GapFilledName returns the deterministic output path for a gap-filled
// product, which carries no radius because it composites all of them
func GapFilledName(outDir, basename, demtype, suffix, product string) string {
	prefix := ""
	if basename != "" {
		prefix = basename + "_"
	}
	return filepath.Join(outDir, fmt.Sprintf("%s%s%s.%s.tif", prefix, demtype, suffix, product))
}

// ProductPath returns the path of one product for a DEM base name
func ProductPath(base, product string) string {
	return fmt.Sprintf("%s.%s.tif", base, product)
}
