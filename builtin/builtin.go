// Package builtin implements the document-level native bindings every
// HVML document starts with: $HVML, $SYSTEM, $DATETIME, $DOC, $SESSION,
// $EJSON, $STR, $STREAM, $TIMERS, $T and $L, generalizing the teacher's
// env namespace (which binds a fixed handful of SCXML `_` system
// variables) to this engine's much larger built-in surface.
package builtin

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/agentflare-ai/hvml-go/scope"
	"github.com/agentflare-ai/hvml-go/timer"
	"github.com/agentflare-ai/hvml-go/value"
)

// Bind populates doc (the document-level scope) with every built-in
// binding. ts, if non-nil, backs $TIMERS; sessionID and docName identify
// the running document for $SESSION/$DOC.
func Bind(ctx context.Context, doc *scope.Map, ts *timer.Service, sessionID, docName string) {
	doc.Define("HVML", hvmlObject())
	doc.Define("SYSTEM", systemObject())
	doc.Define("DATETIME", datetimeObject())
	doc.Define("DOC", docObject(docName))
	doc.Define("SESSION", sessionObject(sessionID))
	doc.Define("EJSON", ejsonObject())
	doc.Define("STR", strObject())
	doc.Define("STREAM", streamObject())
	if ts != nil {
		doc.Define("TIMERS", ts.Set())
	}
	doc.Define("T", tObject())
	doc.Define("L", lObject())
}

func hvmlObject() *value.Object {
	o := value.MakeObject()
	ctx := context.Background()
	o.Set(ctx, "target", value.MakeString("void"))
	o.Set(ctx, "base", value.MakeString(""))
	o.Set(ctx, "version", value.MakeString("1.0"))
	return o
}

func systemObject() *value.Object {
	ctx := context.Background()
	o := value.MakeObject()
	o.Set(ctx, "os", value.MakeString(runtime.GOOS))
	o.Set(ctx, "arch", value.MakeString(runtime.GOARCH))
	o.Set(ctx, "numcpu", value.MakeInt64(int64(runtime.NumCPU())))
	return o
}

func datetimeObject() *value.Native {
	return value.MakeNative(nil, &value.NativeOps{
		PropertyGetter: func(ctx context.Context, payload interface{}, name string) (value.Value, error) {
			now := time.Now()
			switch name {
			case "time":
				return value.MakeInt64(now.Unix()), nil
			case "time-utc":
				return value.MakeInt64(now.UTC().Unix()), nil
			case "time-local":
				return value.MakeString(now.Local().Format(time.RFC3339)), nil
			default:
				return nil, fmt.Errorf("builtin: $DATETIME has no property %q", name)
			}
		},
	})
}

func docObject(name string) *value.Object {
	ctx := context.Background()
	o := value.MakeObject()
	o.Set(ctx, "title", value.MakeString(name))
	o.Set(ctx, "base", value.MakeString(""))
	return o
}

func sessionObject(id string) *value.Object {
	ctx := context.Background()
	o := value.MakeObject()
	o.Set(ctx, "id", value.MakeString(id))
	return o
}

func ejsonObject() *value.Native {
	return value.MakeNative(nil, &value.NativeOps{
		PropertyGetter: func(ctx context.Context, payload interface{}, name string) (value.Value, error) {
			switch name {
			case "parse":
				return value.MakeDynamic(func(ctx context.Context, args []value.Value) (value.Value, error) {
					if len(args) == 0 {
						return nil, fmt.Errorf("builtin: $EJSON.parse requires one argument")
					}
					return Parse(value.ToString(args[0]))
				}, nil), nil
			case "stringify":
				return value.MakeDynamic(func(ctx context.Context, args []value.Value) (value.Value, error) {
					if len(args) == 0 {
						return value.MakeString(""), nil
					}
					return value.MakeString(Stringify(args[0])), nil
				}, nil), nil
			default:
				return nil, fmt.Errorf("builtin: $EJSON has no property %q", name)
			}
		},
	})
}

func strObject() *value.Native {
	return value.MakeNative(nil, &value.NativeOps{
		PropertyGetter: func(ctx context.Context, payload interface{}, name string) (value.Value, error) {
			switch name {
			case "concat":
				return value.MakeDynamic(func(ctx context.Context, args []value.Value) (value.Value, error) {
					var s string
					for _, a := range args {
						s += value.ToString(a)
					}
					return value.MakeString(s), nil
				}, nil), nil
			default:
				return nil, fmt.Errorf("builtin: $STR has no property %q", name)
			}
		},
	})
}

func streamObject() *value.Object {
	// Stdin/stdout/stderr stream handles are bound lazily by the runtime
	// hosting the interpreter; the document-level $STREAM object starts
	// empty and is populated by whatever embeds this package.
	return value.MakeObject()
}

func tObject() *value.Native {
	return value.MakeNative(nil, &value.NativeOps{
		PropertyGetter: func(ctx context.Context, payload interface{}, name string) (value.Value, error) {
			return value.MakeString(name), nil
		},
	})
}

func lObject() *value.Native {
	return value.MakeNative(nil, &value.NativeOps{})
}
