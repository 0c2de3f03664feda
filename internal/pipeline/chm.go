package pipeline

import (
	"relief/internal/lib"
	"relief/internal/raster"
)

// CreateCHM derives a canopy height model as DSM minus DTM over the DTM's
// grid. A cell is no-data whenever either input lacks a measurement there;
// a canopy height computed from a missing terrain or surface value would be
// meaningless.
func CreateCHM(dtmPath, dsmPath, outPath string) (string, error) {
	dtm, err := raster.ReadGeoTIFF(dtmPath)
	if err != nil {
		return "", err
	}
	dsm, err := raster.ReadGeoTIFF(dsmPath)
	if err != nil {
		return "", err
	}
	if dtm.Width != dsm.Width || dtm.Height != dsm.Height {
		return "", lib.ErrGridMismatch(dtmPath, dsmPath)
	}

	out := raster.NewGridLike(dtm)
	for i := range dtm.Data {
		tv := dtm.Data[i]
		sv := dsm.Data[i]
		if dtm.IsNoData(tv) || dsm.IsNoData(sv) || sv == dtm.NoData {
			continue // stays no-data
		}
		out.Data[i] = sv - tv
	}

	if err := raster.WriteGeoTIFF(outPath, out); err != nil {
		return "", err
	}
	return outPath, nil
}
