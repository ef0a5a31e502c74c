package snotel

import (
	"fmt"

	"github.com/paulmach/orb/geojson"
)

// parseMetadataGeoJSON decodes the station metadata feature collection
// into a table: one row per feature, one column per property plus an
// opaque geometry column. Property columns keep upstream names; the
// caller renames them to canonical ones afterwards.
func parseMetadataGeoJSON(body []byte) (*Table, error) {
	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return nil, &SchemaValidationError{Reason: fmt.Sprintf("decode geojson: %v", err)}
	}

	var names []string
	seen := make(map[string]bool)
	for _, f := range fc.Features {
		for k := range f.Properties {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}

	t := NewTable()
	for _, name := range names {
		cells := make([]any, len(fc.Features))
		for i, f := range fc.Features {
			if v, ok := f.Properties[name]; ok {
				cells[i] = v
			}
		}
		if err := t.AddColumn(name, propertyType(cells), cells); err != nil {
			return nil, &SchemaValidationError{Column: name, Reason: err.Error()}
		}
	}

	geoms := make([]any, len(fc.Features))
	for i, f := range fc.Features {
		if f.Geometry != nil {
			geoms[i] = f.Geometry
		}
	}
	if err := t.AddColumn("geometry", TypeGeometry, geoms); err != nil {
		return nil, &SchemaValidationError{Column: "geometry", Reason: err.Error()}
	}
	return t, nil
}

// propertyType picks a column type from the first non-null JSON value;
// schema validation coerces the rest.
func propertyType(cells []any) ColType {
	for _, v := range cells {
		switch v.(type) {
		case nil:
			continue
		case float64:
			return TypeFloat64
		case bool:
			return TypeBool
		default:
			return TypeString
		}
	}
	return TypeString
}
