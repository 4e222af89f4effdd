package config

// Overrides carries CLI flag values layered over the file configuration.
// Nil fields leave the loaded value untouched; set fields always win.
type Overrides struct {
	AnnotationEnabled *bool
	AnnotationColor   *string
	AnnotationSize    *int
	DelayMs           *int
	Format            *string
	GifEnabled        *bool
	LogLevel          *string
}

// Apply layers the overrides onto the configuration
func (c *Config) Apply(o Overrides) {
	if o.AnnotationEnabled != nil {
		c.Annotation.Enabled = *o.AnnotationEnabled
	}
	if o.AnnotationColor != nil {
		c.Annotation.Color = *o.AnnotationColor
	}
	if o.AnnotationSize != nil {
		c.Annotation.Size = *o.AnnotationSize
	}
	if o.DelayMs != nil {
		c.Capture.DelayMs = *o.DelayMs
	}
	if o.Format != nil {
		c.Capture.Format = *o.Format
	}
	if o.GifEnabled != nil {
		c.Gif.Enabled = *o.GifEnabled
	}
	if o.LogLevel != nil {
		c.LogLevel = *o.LogLevel
	}
}
