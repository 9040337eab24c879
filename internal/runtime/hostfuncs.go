package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/risor-io/risor/object"

	"github.com/jward/cxxnav"
)

// Query builtins take (file, line, column). A miss is nil, not an error,
// so scripts can probe positions freely.

// units() → list of keys
func makeUnitsFn(nav *cxxnav.Navigator) *object.Builtin {
	return object.NewBuiltin("units", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("units", 0, len(args))
		}
		return stringList(nav.Keys())
	})
}

// parse(key, path, args?) → bool, whether a unit is stored under key
func makeParseFn(nav *cxxnav.Navigator) *object.Builtin {
	return object.NewBuiltin("parse", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 2 || len(args) > 3 {
			return object.NewArgsRangeError("parse", 2, 3, len(args))
		}
		key, err := toString(args[0])
		if err != nil {
			return object.Errorf("parse: key: %v", err)
		}
		path, err := toString(args[1])
		if err != nil {
			return object.Errorf("parse: path: %v", err)
		}
		var flags []string
		if len(args) == 3 {
			if flags, err = toStrings(args[2]); err != nil {
				return object.Errorf("parse: args: %v", err)
			}
		}
		nav.Parse(key, path, flags, "")
		_, ok := nav.Unit(key)
		return object.NewBool(ok)
	})
}

// parse_file(path, args?) → key
func makeParseFileFn(nav *cxxnav.Navigator, defaults []string) *object.Builtin {
	return object.NewBuiltin("parse_file", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 1 || len(args) > 2 {
			return object.NewArgsRangeError("parse_file", 1, 2, len(args))
		}
		path, err := toString(args[0])
		if err != nil {
			return object.Errorf("parse_file: path: %v", err)
		}
		flags := defaults
		if len(args) == 2 {
			if flags, err = toStrings(args[1]); err != nil {
				return object.Errorf("parse_file: args: %v", err)
			}
		}
		return object.NewString(nav.ParseFile(path, flags))
	})
}

// classify(file, line, column) → {id, kind, spelling, file, line, column} or nil
func makeClassifyFn(nav *cxxnav.Navigator) *object.Builtin {
	return object.NewBuiltin("classify", func(ctx context.Context, args ...object.Object) object.Object {
		file, line, col, errObj := position("classify", args)
		if errObj != nil {
			return errObj
		}
		info, ok := nav.Classify(file, line, col)
		if !ok {
			return object.Nil
		}
		m := locationMap(info.Location)
		m["id"] = object.NewString(info.ID.String())
		m["kind"] = object.NewString(info.Kind.String())
		m["spelling"] = object.NewString(info.Spelling)
		return object.NewMap(m)
	})
}

// references(file, line, column) → list of {file, line, column}
func makeReferencesFn(nav *cxxnav.Navigator) *object.Builtin {
	return object.NewBuiltin("references", func(ctx context.Context, args ...object.Object) object.Object {
		file, line, col, errObj := position("references", args)
		if errObj != nil {
			return errObj
		}
		locs := nav.FindAllReferences(file, line, col).Sorted()
		items := make([]object.Object, 0, len(locs))
		for _, loc := range locs {
			items = append(items, object.NewMap(locationMap(loc)))
		}
		return object.NewList(items)
	})
}

// definition(file, line, column) → {file, line, column} or nil
func makeDefinitionFn(nav *cxxnav.Navigator) *object.Builtin {
	return object.NewBuiltin("definition", func(ctx context.Context, args ...object.Object) object.Object {
		file, line, col, errObj := position("definition", args)
		if errObj != nil {
			return errObj
		}
		loc, ok := nav.DefinitionAt(file, line, col)
		if !ok {
			return object.Nil
		}
		return object.NewMap(locationMap(loc))
	})
}

// nodes(file) → list of node maps, as cxxnav dump prints them
func makeNodesFn(nav *cxxnav.Navigator) *object.Builtin {
	return object.NewBuiltin("nodes", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("nodes", 1, len(args))
		}
		file, err := toString(args[0])
		if err != nil {
			return object.Errorf("nodes: %v", err)
		}
		rows := nav.Dump(file)
		items := make([]object.Object, 0, len(rows))
		for _, row := range rows {
			m := locationMap(row.Location)
			m["spelling"] = object.NewString(row.Spelling)
			m["kind"] = object.NewString(row.Kind)
			m["type_kind"] = object.NewString(row.TypeKind)
			m["usr"] = object.NewString(row.USR)
			m["semantic"] = object.NewString(row.Semantic.String())
			m["referenced"] = object.NewString(row.Referenced)
			m["declaration"] = object.NewBool(row.Decl)
			m["depth"] = object.NewInt(int64(row.Depth))
			items = append(items, object.NewMap(m))
		}
		return object.NewList(items)
	})
}

// diagnostics(key) → list of {severity, message, file, line, column}, or nil
// for an unknown key
func makeDiagnosticsFn(nav *cxxnav.Navigator) *object.Builtin {
	return object.NewBuiltin("diagnostics", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("diagnostics", 1, len(args))
		}
		key, err := toString(args[0])
		if err != nil {
			return object.Errorf("diagnostics: %v", err)
		}
		if _, ok := nav.Unit(key); !ok {
			return object.Nil
		}
		diags := nav.Diagnostics(key)
		items := make([]object.Object, 0, len(diags))
		for _, d := range diags {
			m := locationMap(d.Location)
			m["severity"] = object.NewString(d.Severity.String())
			m["message"] = object.NewString(d.Message)
			items = append(items, object.NewMap(m))
		}
		return object.NewList(items)
	})
}

func position(name string, args []object.Object) (string, int, int, object.Object) {
	if len(args) != 3 {
		return "", 0, 0, object.NewArgsError(name, 3, len(args))
	}
	file, err := toString(args[0])
	if err != nil {
		return "", 0, 0, object.Errorf("%s: file: %v", name, err)
	}
	line, err := toInt(args[1])
	if err != nil {
		return "", 0, 0, object.Errorf("%s: line: %v", name, err)
	}
	col, err := toInt(args[2])
	if err != nil {
		return "", 0, 0, object.Errorf("%s: column: %v", name, err)
	}
	return file, line, col, nil
}

func locationMap(loc cxxnav.Location) map[string]object.Object {
	return map[string]object.Object{
		"file":   object.NewString(loc.File),
		"line":   object.NewInt(int64(loc.Line)),
		"column": object.NewInt(int64(loc.Column)),
	}
}

func stringList(values []string) *object.List {
	items := make([]object.Object, 0, len(values))
	for _, v := range values {
		items = append(items, object.NewString(v))
	}
	return object.NewList(items)
}

func toString(obj object.Object) (string, error) {
	if s, ok := obj.(*object.String); ok {
		return s.Value(), nil
	}
	return "", fmt.Errorf("expected string, got %s", obj.Type())
}

func toInt(obj object.Object) (int, error) {
	switch v := obj.(type) {
	case *object.Int:
		return int(v.Value()), nil
	case *object.Float:
		return int(v.Value()), nil
	}
	return 0, fmt.Errorf("expected int, got %s", obj.Type())
}

func toStrings(obj object.Object) ([]string, error) {
	list, ok := obj.(*object.List)
	if !ok {
		return nil, fmt.Errorf("expected list, got %s", obj.Type())
	}
	out := make([]string, 0, len(list.Value()))
	for _, item := range list.Value() {
		s, err := toString(item)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// logObject provides log.info/warn/error/debug for scripts.
type logObject struct {
	logger *slog.Logger
}

func (l *logObject) Debug(msg string) { l.logger.Debug(msg) }
func (l *logObject) Info(msg string)  { l.logger.Info(msg) }
func (l *logObject) Warn(msg string)  { l.logger.Warn(msg) }
func (l *logObject) Error(msg string) { l.logger.Error(msg) }
