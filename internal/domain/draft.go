package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Draft is an un-normalised candidate quote. Each field accepts the
// loosely typed shapes found in hand-written documents and form input.
type Draft struct {
	ID      LooseString `json:"id"`
	Text    LooseString `json:"text"`
	Author  LooseString `json:"author"`
	Tags    TagList     `json:"tags"`
	Fav     Flag        `json:"fav"`
	Created Timestamp   `json:"created"`
	Updated Timestamp   `json:"updated"`
}

// DraftFromRecord converts a record back into input form.
func DraftFromRecord(r QuoteRecord) Draft {
	return Draft{
		ID:      LooseString(r.ID),
		Text:    LooseString(r.Text),
		Author:  LooseString(r.Author),
		Tags:    TagsFromList(r.Tags),
		Fav:     Flag(r.Fav),
		Created: Timestamp(r.Created),
		Updated: Timestamp(r.Updated),
	}
}

// Record coerces d into a record without defaulting anything that needs a
// clock or an id generator. A missing id stays empty, a missing created
// time stays zero and a missing updated time takes the created time.
func (d Draft) Record() QuoteRecord {
	created := int64(d.Created)

	return QuoteRecord{
		ID:      d.ID.Trimmed(),
		Text:    d.Text.Trimmed(),
		Author:  d.Author.Trimmed(),
		Tags:    d.Tags.Resolve(),
		Fav:     bool(d.Fav),
		Created: created,
		Updated: d.Updated.Or(created),
	}
}

// LooseString accepts a JSON string, number or null.
type LooseString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *LooseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case isNull(data):
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = LooseString(v)
	case isBool(data):
		*s = LooseString(data)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*s = LooseString(n.String())
	}

	return nil
}

// Trimmed returns the value with surrounding white space removed.
func (s LooseString) Trimmed() string {
	return strings.TrimSpace(string(s))
}

// TagList accepts either a comma-separated string or an array of strings.
type TagList struct {
	Raw    string
	List   []string
	IsList bool
}

// TagsFromString builds a TagList from comma-separated input.
func TagsFromString(raw string) TagList {
	return TagList{Raw: raw}
}

// TagsFromList builds a TagList from pre-split tags.
func TagsFromList(tags []string) TagList {
	return TagList{List: tags, IsList: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *TagList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*t = TagList{}

	switch {
	case isNull(data):
		return nil
	case len(data) > 0 && data[0] == '[':
		var items []LooseString
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		t.IsList = true
		t.List = make([]string, len(items))
		for i, item := range items {
			t.List[i] = string(item)
		}
	default:
		var raw LooseString
		if err := raw.UnmarshalJSON(data); err != nil {
			return err
		}
		t.Raw = string(raw)
	}

	return nil
}

// Resolve returns the tags with empty entries removed. String input is
// split on commas and each piece trimmed; list input keeps its order and
// spelling and only drops entries that are blank.
func (t TagList) Resolve() []string {
	out := []string{}

	if t.IsList {
		for _, tag := range t.List {
			if strings.TrimSpace(tag) != "" {
				out = append(out, tag)
			}
		}

		return out
	}

	for piece := range strings.SplitSeq(t.Raw, ",") {
		if piece = strings.TrimSpace(piece); piece != "" {
			out = append(out, piece)
		}
	}

	return out
}

// Flag accepts a boolean, a string compared case-insensitively against
// "true", or a number where non-zero is true.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case isNull(data):
		*f = false
	case isBool(data):
		*f = Flag(string(data) == "true")
	case len(data) > 0 && data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*f = ParseFlag(v)
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*f = n != 0
	}

	return nil
}

// ParseFlag interprets form text: only "true" (any case, trimmed) is true.
func ParseFlag(s string) Flag {
	return Flag(strings.EqualFold(strings.TrimSpace(s), "true"))
}

// Timestamp is a millisecond Unix timestamp where zero means absent.
type Timestamp int64

// Date layouts accepted for timestamp strings, tried in order.
const (
	dateLayout      = "2006-01-02"
	localDateLayout = "2006-01-02T15:04"
)

// UnmarshalJSON implements json.Unmarshaler. Unparseable strings are
// treated as absent rather than failing the whole document.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case isNull(data), isBool(data):
		*ts = 0
	case len(data) > 0 && data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*ts = ParseTimestamp(v)
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*ts = fromFloat(n)
	}

	return nil
}

// ParseTimestamp converts a numeric string or a date string to
// milliseconds. It returns 0 when s cannot be interpreted.
func ParseTimestamp(s string) Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return fromFloat(n)
	}

	if t, err := time.Parse(dateLayout, s); err == nil {
		return Timestamp(t.UnixMilli())
	}

	if t, err := time.ParseInLocation(localDateLayout, s, time.Local); err == nil {
		return Timestamp(t.UnixMilli())
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Timestamp(t.UnixMilli())
	}

	return 0
}

// Or returns ts, or fallback when ts is absent.
func (ts Timestamp) Or(fallback int64) int64 {
	if ts == 0 {
		return fallback
	}

	return int64(ts)
}

// maxTimestamp is 2^63; float64 has no exact math.MaxInt64.
const maxTimestamp = float64(1 << 63)

// fromFloat truncates n. Values that do not fit in an int64 are absent.
func fromFloat(n float64) Timestamp {
	if math.IsNaN(n) || n >= maxTimestamp || n < -maxTimestamp {
		return 0
	}

	return Timestamp(math.Trunc(n))
}

func isNull(data []byte) bool {
	return len(data) == 0 || string(data) == "null"
}

func isBool(data []byte) bool {
	return string(data) == "true" || string(data) == "false"
}
