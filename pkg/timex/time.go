// Package timex provides a database and JSON friendly time type
// Package timex 提供对数据库和 JSON 友好的时间类型
package timex

import (
	"database/sql/driver"
	"fmt"
	"time"
)

const timeFormat = "2006-01-02 15:04:05"

// Time wraps time.Time and serializes as "2006-01-02 15:04:05"
// Time 包装 time.Time，序列化格式为 "2006-01-02 15:04:05"
type Time time.Time

// Now returns the current time as a Time
func Now() Time {
	return Time(time.Now())
}

// Time returns the underlying time.Time
func (t Time) Time() time.Time {
	return time.Time(t)
}

// Unix returns the Unix timestamp in seconds
func (t Time) Unix() int64 {
	return time.Time(t).Unix()
}

// UnixMilli returns the Unix timestamp in milliseconds
func (t Time) UnixMilli() int64 {
	return time.Time(t).UnixMilli()
}

// UnixMicro returns the Unix timestamp in microseconds
func (t Time) UnixMicro() int64 {
	return time.Time(t).UnixMicro()
}

// UnixNano returns the Unix timestamp in nanoseconds
func (t Time) UnixNano() int64 {
	return time.Time(t).UnixNano()
}

// IsZero reports whether t is the zero time
func (t Time) IsZero() bool {
	return time.Time(t).IsZero()
}

// String implements fmt.Stringer
func (t Time) String() string {
	return time.Time(t).Format(timeFormat)
}

// MarshalJSON implements json.Marshaler
func (t Time) MarshalJSON() ([]byte, error) {
	b := make([]byte, 0, len(timeFormat)+2)
	b = append(b, '"')
	b = time.Time(t).AppendFormat(b, timeFormat)
	b = append(b, '"')
	return b, nil
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Time) UnmarshalJSON(data []byte) error {
	if string(data) == "null" || string(data) == `""` {
		return nil
	}
	parsed, err := time.ParseInLocation(`"`+timeFormat+`"`, string(data), time.Local)
	if err != nil {
		return err
	}
	*t = Time(parsed)
	return nil
}

// Value implements driver.Valuer for database writes
// Value 实现 driver.Valuer 用于数据库写入
func (t Time) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return time.Time(t), nil
}

// Scan implements sql.Scanner for database reads
// Scan 实现 sql.Scanner 用于数据库读取
func (t *Time) Scan(v interface{}) error {
	switch value := v.(type) {
	case time.Time:
		*t = Time(value)
		return nil
	case []byte:
		parsed, err := time.ParseInLocation(timeFormat, string(value), time.Local)
		if err != nil {
			return err
		}
		*t = Time(parsed)
		return nil
	case string:
		parsed, err := time.ParseInLocation(timeFormat, value, time.Local)
		if err != nil {
			return err
		}
		*t = Time(parsed)
		return nil
	default:
		return fmt.Errorf("cannot convert %v to timex.Time", v)
	}
}
