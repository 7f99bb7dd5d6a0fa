package builtins

import (
	"math"
	"time"

	"github.com/lorelei-lang/lorelei/lang/machine"
)

// wireDate installs a working-but-not-exhaustive Date.prototype (ES3
// 15.9.5): internal storage is milliseconds-since-epoch as a float64
// (the wrapper object's Prim field), matched against Go's time.Time only at
// the accessor boundary — full ES3 calendar-math fidelity (its own
// leap-second-free Gregorian model, spec 15.9.1) is explicitly
// non-exhaustive per spec §1/§8, which names Date as exactly the kind of
// built-in whose method bodies don't need bit-for-bit algorithm parity.
func wireDate(th *machine.Thread, proto *machine.Object) *machine.Object {
	methods := map[string]struct {
		n  int
		fn machine.NativeFunc
	}{
		"toString":        {0, dateToString},
		"valueOf":         {0, dateValueOf},
		"getTime":         {0, dateValueOf},
		"setTime":         {1, dateSetTime},
		"getFullYear":     {0, dateGetFullYear},
		"getMonth":        {0, dateGetMonth},
		"getDate":         {0, dateGetDate},
		"getDay":          {0, dateGetDay},
		"getHours":        {0, dateGetHours},
		"getMinutes":      {0, dateGetMinutes},
		"getSeconds":      {0, dateGetSeconds},
		"getMilliseconds": {0, dateGetMilliseconds},
	}
	for name, m := range methods {
		proto.DefineDataProperty(th, name, th.NewNativeFunction(name, m.n, m.fn), true, false, true)
	}
	ctor := th.NewConstructor("Date", 7, proto, dateConstructMethod)
	ctor.DefineDataProperty(th, "now", th.NewNativeFunction("now", 0, dateNow), true, false, true)
	return ctor
}

func epochMillis(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e6
}

func timeFromMillis(ms float64) time.Time {
	if math.IsNaN(ms) {
		return time.Time{}
	}
	return time.UnixMilli(int64(ms)).UTC()
}

func dateConstructMethod(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	var ms float64
	switch args.Len() {
	case 0:
		ms = epochMillis(time.Now())
	case 1:
		v := args.At(0)
		if s, ok := v.(machine.String); ok {
			t, err := time.Parse(time.RFC3339, string(s))
			if err != nil {
				ms = math.NaN()
			} else {
				ms = epochMillis(t)
			}
		} else {
			n, err := machine.ToNumber(th, v)
			if err != nil {
				return nil, err
			}
			ms = n
		}
	default:
		get := func(i int, def int) (int, error) {
			if i >= args.Len() {
				return def, nil
			}
			n, err := machine.ToInteger(th, args.At(i))
			return int(n), err
		}
		year, err := get(0, 1970)
		if err != nil {
			return nil, err
		}
		month, err := get(1, 0)
		if err != nil {
			return nil, err
		}
		day, err := get(2, 1)
		if err != nil {
			return nil, err
		}
		hour, err := get(3, 0)
		if err != nil {
			return nil, err
		}
		minute, err := get(4, 0)
		if err != nil {
			return nil, err
		}
		sec, err := get(5, 0)
		if err != nil {
			return nil, err
		}
		msec, err := get(6, 0)
		if err != nil {
			return nil, err
		}
		t := time.Date(year, time.Month(month+1), day, hour, minute, sec, msec*1e6, time.UTC)
		ms = epochMillis(t)
	}
	o := th.NewWrapper(machine.ClassDate, th.ProtoDate(), machine.Float(ms))
	return o, nil
}

func dateNow(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	return machine.Float(epochMillis(time.Now())), nil
}

func thisDateMillis(this machine.Value) float64 {
	if o, ok := this.(*machine.Object); ok && o.Class == machine.ClassDate {
		if f, ok := o.Prim.(machine.Float); ok {
			return float64(f)
		}
		if i, ok := o.Prim.(machine.Int); ok {
			return float64(i)
		}
	}
	return math.NaN()
}

func dateSetTime(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	o, ok := this.(*machine.Object)
	if !ok || o.Class != machine.ClassDate {
		return nil, th.TypeError("Date.prototype.setTime called on non-Date")
	}
	n, err := machine.ToNumber(th, args.At(0))
	if err != nil {
		return nil, err
	}
	o.Prim = machine.Float(n)
	return machine.Float(n), nil
}

func dateValueOf(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	return machine.Float(thisDateMillis(this)), nil
}

func dateToString(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	ms := thisDateMillis(this)
	if math.IsNaN(ms) {
		return machine.String("Invalid Date"), nil
	}
	return machine.String(timeFromMillis(ms).Format("Mon Jan 02 2006 15:04:05 GMT+0000 (UTC)")), nil
}

func dateGetFullYear(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	return machine.Int(timeFromMillis(thisDateMillis(this)).Year()), nil
}
func dateGetMonth(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	return machine.Int(int(timeFromMillis(thisDateMillis(this)).Month()) - 1), nil
}
func dateGetDate(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	return machine.Int(timeFromMillis(thisDateMillis(this)).Day()), nil
}
func dateGetDay(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	return machine.Int(int(timeFromMillis(thisDateMillis(this)).Weekday())), nil
}
func dateGetHours(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	return machine.Int(timeFromMillis(thisDateMillis(this)).Hour()), nil
}
func dateGetMinutes(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	return machine.Int(timeFromMillis(thisDateMillis(this)).Minute()), nil
}
func dateGetSeconds(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	return machine.Int(timeFromMillis(thisDateMillis(this)).Second()), nil
}
func dateGetMilliseconds(th *machine.Thread, this machine.Value, args *machine.Tuple) (machine.Value, error) {
	return machine.Int(timeFromMillis(thisDateMillis(this)).Nanosecond() / 1e6), nil
}
