package containers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/ygrebnov/errorc"

	"github.com/reoring/containerjson"
	"github.com/reoring/containerjson/collect"
	"github.com/reoring/containerjson/databind"
)

// HostAndPortDeserializer reads the canonical "host:port" string, and the
// legacy object form {"host"|"hostText": ..., "port": ...}.
type HostAndPortDeserializer struct{}

var hostAndPort = databind.TypeOf(hostAndPortType)

func (HostAndPortDeserializer) Deserialize(p *databind.Parser, ctx *databind.Context) (any, error) {
	switch p.CurrentToken() {
	case containerjson.TokenBeginObject:
		return legacyHostAndPort(p, ctx)
	case containerjson.TokenString:
		hp, err := collect.ParseHostAndPort(p.Text())
		if err != nil {
			return nil, ctx.ReportInvalidFormat(hostAndPort, p, p.Text(), err)
		}
		return hp, nil
	}
	return nil, ctx.WrongTokenError(hostAndPort, p, containerjson.TokenString, "")
}

func legacyHostAndPort(p *databind.Parser, ctx *databind.Context) (any, error) {
	tree, err := p.ReadValueAsTree()
	if err != nil {
		return nil, containerjson.ToIssues(err)
	}
	obj, _ := tree.(map[string]any)
	hostNode, ok := obj["host"]
	if !ok {
		hostNode = obj["hostText"]
	}
	host := nodeText(hostNode)
	portNode, ok := obj["port"]
	var hp collect.HostAndPort
	if ok {
		var port int
		if port, err = nodePort(portNode); err == nil {
			hp, err = collect.HostAndPortFromParts(host, port)
		}
	} else {
		hp, err = collect.ParseHostAndPort(host)
	}
	if err != nil {
		return nil, ctx.ReportInvalidFormat(hostAndPort, p, treeText(obj), err)
	}
	return hp, nil
}

// treeText renders the legacy object back as JSON for diagnostics.
func treeText(obj map[string]any) string {
	b, err := json.Marshal(obj)
	if err != nil {
		return fmt.Sprint(obj)
	}
	return string(b)
}

// nodeText renders a scalar tree node as text; null and containers are "".
func nodeText(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case json.Number:
		return n.String()
	case bool:
		return strconv.FormatBool(n)
	}
	return ""
}

// nodePort reads a port the lenient way: numbers and numeric strings convert,
// anything else is 0. Numbers outside the port range are rejected before
// conversion.
func nodePort(v any) (int, error) {
	text := nodeText(v)
	n, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, nil
	}
	if math.IsNaN(n) || n < 0 || n > maxPort {
		return 0, errorc.With(collect.ErrInvalidHostPort,
			errorc.String(collect.ErrorFieldInput, text),
			errorc.String(collect.ErrorFieldValueType, "port out of range"))
	}
	return int(n), nil
}

const maxPort = 65535
