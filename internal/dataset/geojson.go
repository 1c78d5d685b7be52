package dataset

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"hospital-access/internal/crs"

	"github.com/paulmach/orb/geojson"
)

// GeoJSON 2008 版 crs 成员；RFC 7946 已移除，但 GDAL/QGIS 导出仍会写入
type crsMember struct {
	CRS *struct {
		Type       string `json:"type"`
		Properties struct {
			Name string `json:"name"`
			Code any    `json:"code"`
		} `json:"properties"`
	} `json:"crs"`
}

func readGeoJSON(path string) ([]feature, crs.Code, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, crs.Unknown, &UnreadableSourceError{Path: path, Err: err}
	}
	var cm crsMember
	if err := json.Unmarshal(b, &cm); err != nil {
		return nil, crs.Unknown, &UnreadableSourceError{Path: path, Err: err}
	}
	code, err := geoJSONCRS(path, cm)
	if err != nil {
		return nil, crs.Unknown, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(b)
	if err != nil {
		return nil, crs.Unknown, &UnreadableSourceError{Path: path, Err: err}
	}
	feats := make([]feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		props := make(map[string]string, len(f.Properties))
		for k, v := range f.Properties {
			props[strings.ToUpper(k)] = propString(v)
		}
		feats = append(feats, feature{props: props, geometry: f.Geometry})
	}
	return feats, code, nil
}

func geoJSONCRS(path string, cm crsMember) (crs.Code, error) {
	if cm.CRS == nil {
		return crs.Unknown, missingCRS(path, "no crs member")
	}
	switch strings.ToLower(cm.CRS.Type) {
	case "name":
		c, err := crs.Parse(cm.CRS.Properties.Name)
		if err != nil {
			return crs.Unknown, missingCRS(path, "%v", err)
		}
		return c, nil
	case "epsg":
		c, err := crs.Parse("EPSG:" + propString(cm.CRS.Properties.Code))
		if err != nil {
			return crs.Unknown, missingCRS(path, "%v", err)
		}
		return c, nil
	}
	return crs.Unknown, missingCRS(path, "unsupported crs type %q", cm.CRS.Type)
}

func propString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	}
	b, _ := json.Marshal(v)
	return string(b)
}
