package snotel

// Field declares one canonical column: its name, its target type, and
// whether nulls are allowed.
type Field struct {
	Name     string
	Type     ColType
	Nullable bool
}

// Schema is a declarative column contract. Validation coerces every
// declared column to its target type; columns outside the declaration
// pass through untouched (the contract is non-strict). If Key is set,
// that column is promoted to the table's unique row key.
type Schema struct {
	Key    string
	Fields []Field
}

// Validate checks a table against the schema in place: every declared
// column must be present, is coerced to its declared type, and must
// hold no nulls unless marked nullable.
func (s Schema) Validate(t *Table) error {
	for _, f := range s.Fields {
		col, ok := t.Column(f.Name)
		if !ok {
			return &SchemaValidationError{Column: f.Name, Reason: "required column missing"}
		}
		if err := t.Cast(f.Name, f.Type); err != nil {
			return err
		}
		if !f.Nullable {
			for _, v := range col.Cells {
				if v == nil {
					return &SchemaValidationError{Column: f.Name, Reason: "null value in non-nullable column"}
				}
			}
		}
	}
	if s.Key != "" && t.Key() != s.Key {
		return t.SetKey(s.Key)
	}
	return nil
}

// stationMetadataSchema mirrors the upstream station collection: code
// is the unique key, everything else is nullable, and the geojson
// carries extra columns we deliberately leave alone.
var stationMetadataSchema = Schema{
	Key: "code",
	Fields: []Field{
		{Name: "code", Type: TypeString, Nullable: false},
		{Name: "name", Type: TypeString, Nullable: true},
		{Name: "network", Type: TypeString, Nullable: true},
		{Name: "state", Type: TypeString, Nullable: true},
		{Name: "huc", Type: TypeString, Nullable: true},
		{Name: "mgrs", Type: TypeString, Nullable: true},
		{Name: "mountain_range", Type: TypeString, Nullable: true},
		{Name: "elevation_m", Type: TypeFloat64, Nullable: true},
		{Name: "latitude", Type: TypeFloat64, Nullable: true},
		{Name: "longitude", Type: TypeFloat64, Nullable: true},
		{Name: "begin_date", Type: TypeDate, Nullable: true},
		{Name: "end_date", Type: TypeDate, Nullable: true},
		{Name: "has_csv_data", Type: TypeBool, Nullable: true},
		{Name: "geometry", Type: TypeGeometry, Nullable: true},
	},
}

// observationFields lists the canonical daily-observation columns.
// Unlike the metadata schema these are applied only where present:
// stations report different subsets and absent columns stay absent.
var observationFields = []Field{
	{Name: "datetime", Type: TypeDate, Nullable: true},
	{Name: "swe_m", Type: TypeFloat32, Nullable: true},
	{Name: "snow_depth_m", Type: TypeFloat32, Nullable: true},
	{Name: "precip_m", Type: TypeFloat32, Nullable: true},
	{Name: "tavg_c", Type: TypeFloat32, Nullable: true},
	{Name: "tmin_c", Type: TypeFloat32, Nullable: true},
	{Name: "tmax_c", Type: TypeFloat32, Nullable: true},
}
