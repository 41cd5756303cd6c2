package model

// AppConfig holds application-wide preferences and the defaults applied to
// newly created projects, boxes and trays.
type AppConfig struct {
	// Project-wide defaults
	DefaultPrintBedSize     float64 `toml:"default_print_bed_size" json:"default_print_bed_size"`
	DefaultCounterThickness float64 `toml:"default_counter_thickness" json:"default_counter_thickness"`

	// Box defaults
	DefaultBoxWall      float64 `toml:"default_box_wall" json:"default_box_wall"`
	DefaultBoxFloor     float64 `toml:"default_box_floor" json:"default_box_floor"`
	DefaultBoxTolerance float64 `toml:"default_box_tolerance" json:"default_box_tolerance"`
	DefaultSnapLock     bool    `toml:"default_snap_lock" json:"default_snap_lock"`

	// Tray defaults
	DefaultTrayWall      float64 `toml:"default_tray_wall" json:"default_tray_wall"`
	DefaultTrayFloor     float64 `toml:"default_tray_floor" json:"default_tray_floor"`
	DefaultTrayClearance float64 `toml:"default_tray_clearance" json:"default_tray_clearance"`
	DefaultRimHeight     float64 `toml:"default_rim_height" json:"default_rim_height"`

	// Filament used for print estimates
	FilamentDiameter float64 `toml:"filament_diameter" json:"filament_diameter"` // mm
	FilamentDensity  float64 `toml:"filament_density" json:"filament_density"`  // g/cm³
	FilamentPrice    float64 `toml:"filament_price" json:"filament_price"`    // per kg

	// Application preferences
	LogLevel       string   `toml:"log_level" json:"log_level"` // "debug", "info", "warn"
	ServerAddr     string   `toml:"server_addr" json:"server_addr"`
	CacheDir       string   `toml:"cache_dir" json:"cache_dir"`  // empty = no file cache
	RedisAddr      string   `toml:"redis_addr" json:"redis_addr"` // empty = no redis cache
	RecentProjects []string `toml:"recent_projects" json:"recent_projects"`
}

// DefaultAppConfig returns an AppConfig populated with the same values the
// model constructors use.
func DefaultAppConfig() AppConfig {
	globals := DefaultGlobalParams()
	box := NewBox("")
	tray := DefaultTrayParams()
	return AppConfig{
		DefaultPrintBedSize:     globals.PrintBedSize,
		DefaultCounterThickness: globals.CounterThickness,
		DefaultBoxWall:          box.WallThickness,
		DefaultBoxFloor:         box.FloorThickness,
		DefaultBoxTolerance:     box.Tolerance,
		DefaultSnapLock:         box.Lid.SnapLock,
		DefaultTrayWall:         tray.WallThickness,
		DefaultTrayFloor:        tray.FloorThickness,
		DefaultTrayClearance:    tray.Clearance,
		DefaultRimHeight:        tray.RimHeight,
		FilamentDiameter:        1.75,
		FilamentDensity:         1.24, // PLA
		FilamentPrice:           20.0,
		LogLevel:                "info",
		ServerAddr:              ":8080",
		RecentProjects:          []string{},
	}
}

// ApplyToGlobals copies the project-wide defaults into g.
func (c AppConfig) ApplyToGlobals(g *GlobalParams) {
	g.PrintBedSize = c.DefaultPrintBedSize
	g.CounterThickness = c.DefaultCounterThickness
}

// ApplyToBox copies the box defaults into b.
func (c AppConfig) ApplyToBox(b *Box) {
	b.WallThickness = c.DefaultBoxWall
	b.FloorThickness = c.DefaultBoxFloor
	b.Tolerance = c.DefaultBoxTolerance
	b.Lid.SnapLock = c.DefaultSnapLock
}

// ApplyToTray copies the tray defaults into p.
func (c AppConfig) ApplyToTray(p *TrayParams) {
	p.WallThickness = c.DefaultTrayWall
	p.FloorThickness = c.DefaultTrayFloor
	p.Clearance = c.DefaultTrayClearance
	p.RimHeight = c.DefaultRimHeight
}
