package text

// Cursor walks a page left to right, one field at a time.
type Cursor struct {
	txt string
	pos int

	// Default is returned for missing fields.
	Default string
}

func NewCursor(txt string, pos int) *Cursor {
	return &Cursor{txt: txt, pos: pos}
}

func (c *Cursor) Extract(begin, end string) string {
	value, pos, ok := Extract(c.txt, begin, end, c.pos)
	if !ok {
		return c.Default
	}
	c.pos = pos
	return value
}

// Lookup is Extract with an explicit found flag.
func (c *Cursor) Lookup(begin, end string) (string, bool) {
	value, pos, ok := Extract(c.txt, begin, end, c.pos)
	if ok {
		c.pos = pos
	}
	return value, ok
}

func (c *Cursor) Iter(begin, end string) []string {
	var values []string
	for value := range ExtractIter(c.txt, begin, end, c.pos) {
		values = append(values, value)
	}
	return values
}

// Skip moves the cursor past the next occurrence of marker.
func (c *Cursor) Skip(marker string) bool {
	_, pos, ok := Extract(c.txt, "", marker, c.pos)
	if ok {
		c.pos = pos
	}
	return ok
}

func (c *Cursor) Pos() int {
	return c.pos
}
