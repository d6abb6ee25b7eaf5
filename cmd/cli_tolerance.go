package cmd

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// flagKind says how the value of a flag is read.
type flagKind int

const (
	flagSwitch flagKind = iota
	flagText
	flagPrice
	flagPercent
)

type flagSpec struct {
	name string
	kind flagKind
}

func (s flagSpec) takesValue() bool { return s.kind != flagSwitch }

var knownFlags = map[string]flagSpec{
	"api":          {name: "api", kind: flagText},
	"catalog":      {name: "catalog", kind: flagText},
	"config":       {name: "config", kind: flagText},
	"json":         {name: "json", kind: flagSwitch},
	"verbose":      {name: "verbose", kind: flagSwitch},
	"min-price":    {name: "min-price", kind: flagPrice},
	"max-price":    {name: "max-price", kind: flagPrice},
	"price-band":   {name: "price-band", kind: flagText},
	"brand":        {name: "brand", kind: flagText},
	"ram":          {name: "ram", kind: flagText},
	"tag":          {name: "tag", kind: flagText},
	"min-discount": {name: "min-discount", kind: flagPercent},
	"sort":         {name: "sort", kind: flagText},
	"limit":        {name: "limit", kind: flagText},
	"brand-search": {name: "brand-search", kind: flagText},
	"addr":         {name: "addr", kind: flagText},
	"help":         {name: "help", kind: flagSwitch},
}

var knownCommands = []string{
	"browse",
	"facets",
	"categories",
	"compare",
	"tui",
	"serve",
	"completion",
	"help",
}

// commandAliases are words shoppers and scripts reach for instead of the
// command names. They apply only where a command is expected.
var commandAliases = map[string]string{
	"list":        "categories",
	"ls":          "categories",
	"tree":        "categories",
	"show":        "browse",
	"shop":        "browse",
	"products":    "browse",
	"filters":     "facets",
	"filter":      "facets",
	"vs":          "compare",
	"ui":          "tui",
	"interactive": "tui",
	"server":      "serve",
}

var flagAliases = map[string]string{
	"price-min": "min-price",
	"minprice":  "min-price",
	"from":      "min-price",
	"price-max": "max-price",
	"maxprice":  "max-price",
	"budget":    "max-price",
	"band":      "price-band",
	"brands":    "brand",
	"tags":      "tag",
	"memory":    "ram",
	"discount":  "min-discount",
	"off":       "min-discount",
	"order":     "sort",
	"sort-by":   "sort",
	"max":       "limit",
	"top":       "limit",
	"snapshot":  "catalog",
	"base-url":  "api",
	"listen":    "addr",
	"search":    "brand-search",
}

// pathCommands take category paths as positional arguments.
var pathCommands = map[string]bool{
	"browse":  true,
	"facets":  true,
	"tui":     true,
	"compare": true,
}

var compareConnectors = map[string]bool{"vs": true, "vs.": true, "and": true, "versus": true}

// Breadcrumb separators copied from a storefront page.
var pathSeparators = strings.NewReplacer(">", "/", "›", "/", "\\", "/")

// argNormalizer rewrites argv one token at a time before cobra parses it.
type argNormalizer struct {
	out   []string
	notes []string

	command       string
	nestedAllowed bool
	nestedChosen  bool
	pending       *flagSpec
	passthrough   bool
}

func normalizeCLIArgs(args []string) ([]string, []string) {
	n := &argNormalizer{
		out:   make([]string, 0, len(args)),
		notes: make([]string, 0, 2),
	}
	for _, tok := range args {
		n.push(tok)
	}
	return n.out, n.notes
}

func (n *argNormalizer) push(tok string) {
	switch {
	case n.passthrough:
		n.out = append(n.out, tok)
	case n.pending != nil:
		spec := *n.pending
		n.pending = nil
		n.rewrite("value ", tok, normalizeFlagValue(spec, tok))
	case tok == "--":
		n.passthrough = true
		n.out = append(n.out, tok)
	case strings.HasPrefix(tok, "-"):
		n.flag(tok)
	default:
		n.bare(tok)
	}
}

func (n *argNormalizer) flag(tok string) {
	if len(tok) == 2 {
		if takesValue, ok := knownShorthands[tok[1]]; ok && takesValue {
			n.pending = &flagSpec{kind: flagText}
		}
		n.out = append(n.out, tok)
		return
	}

	name, value, hasValue := strings.Cut(strings.TrimLeft(tok, "-"), "=")
	spec, ok := lookupFlag(name)
	if !ok {
		n.out = append(n.out, tok)
		return
	}

	rewritten := "--" + spec.name
	switch {
	case hasValue:
		rewritten += "=" + normalizeFlagValue(spec, value)
	case spec.takesValue():
		n.pending = &spec
	}
	n.rewrite("", tok, rewritten)
}

func (n *argNormalizer) bare(tok string) {
	if name, value, ok := strings.Cut(tok, "="); ok {
		if spec, found := lookupFlag(name); found {
			n.rewrite("", tok, "--"+spec.name+"="+normalizeFlagValue(spec, value))
			return
		}
	}

	if n.expectsCommand() {
		if command, ok := resolveCommand(tok); ok {
			n.rewrite("command ", tok, command)
			n.choose(command)
			return
		}
	}

	if n.command == "" || bareFlagRewriteAllowed(n.command) {
		if spec, ok := lookupFlag(tok); ok {
			n.rewrite("", tok, "--"+spec.name)
			if spec.takesValue() {
				n.pending = &spec
			}
			return
		}
	}

	if n.command == "compare" && compareConnectors[strings.ToLower(tok)] {
		n.notes = append(n.notes, fmt.Sprintf("ignored `%s` between compared paths.", tok))
		return
	}
	if pathCommands[n.command] {
		n.rewrite("path ", tok, normalizePathArg(tok))
		return
	}
	n.out = append(n.out, tok)
}

func (n *argNormalizer) expectsCommand() bool {
	return n.command == "" || (n.nestedAllowed && !n.nestedChosen)
}

func (n *argNormalizer) choose(command string) {
	if n.command == "" {
		n.command = command
		n.nestedAllowed = allowsNestedCommandArg(command)
		return
	}
	n.nestedChosen = true
}

func (n *argNormalizer) rewrite(what, from, to string) {
	n.out = append(n.out, to)
	if from != to {
		n.notes = append(n.notes, fmt.Sprintf("interpreted %s`%s` as `%s`; use `%s` next time.", what, from, to, to))
	}
}

func bareFlagRewriteAllowed(command string) bool {
	// Flag-only commands. Elsewhere a bare token is a category path segment.
	switch command {
	case "categories", "serve":
		return true
	default:
		return false
	}
}

func allowsNestedCommandArg(command string) bool {
	// These commands accept another command token as a positional argument.
	switch command {
	case "help", "completion":
		return true
	default:
		return false
	}
}

func lookupFlag(raw string) (flagSpec, bool) {
	name, ok := resolveFlagName(raw)
	if !ok {
		return flagSpec{}, false
	}
	return knownFlags[name], true
}

func resolveFlagName(raw string) (string, bool) {
	name := strings.ToLower(strings.TrimSpace(raw))
	name = strings.ReplaceAll(name, "_", "-")

	if canonical, ok := flagAliases[name]; ok {
		return canonical, true
	}
	if _, ok := knownFlags[name]; ok {
		return name, true
	}
	return closestMatch(name, slices.Sorted(maps.Keys(knownFlags)), 2)
}

func resolveCommand(raw string) (string, bool) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if slices.Contains(knownCommands, name) {
		return name, true
	}
	if command, ok := commandAliases[name]; ok {
		return command, true
	}
	return closestMatch(name, knownCommands, 2)
}

// normalizeFlagValue reads shop-style values: "15k", "₹12,499" or "1.5 lakh"
// for prices, "30% off" for discounts. Anything unreadable is passed on as is
// so the flag parser reports it.
func normalizeFlagValue(spec flagSpec, raw string) string {
	switch spec.kind {
	case flagPrice:
		if v, ok := parsePriceArg(raw); ok {
			return v
		}
	case flagPercent:
		if v, ok := parsePercentArg(raw); ok {
			return v
		}
	}
	return raw
}

var priceUnits = []struct {
	suffix string
	scale  int64
}{
	{"lakh", 100_000},
	{"lac", 100_000},
	{"l", 100_000},
	{"k", 1_000},
}

func parsePriceArg(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, prefix := range []string{"₹", "rs.", "rs", "inr"} {
		s = strings.TrimPrefix(s, prefix)
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))

	scale := decimal.NewFromInt(1)
	for _, unit := range priceUnits {
		if num, ok := strings.CutSuffix(s, unit.suffix); ok {
			s = strings.TrimSpace(num)
			scale = decimal.NewFromInt(unit.scale)
			break
		}
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return "", false
	}
	return amount.Mul(scale).String(), true
}

func parsePercentArg(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, suffix := range []string{"off", "percent", "%"} {
		s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
	}
	if _, err := strconv.Atoi(s); err != nil {
		return "", false
	}
	return s, true
}

// normalizePathArg turns "Electronics > Mobiles" into "Electronics/Mobiles".
func normalizePathArg(tok string) string {
	if !strings.ContainsAny(tok, ">›\\") {
		return tok
	}
	parts := strings.Split(pathSeparators.Replace(tok), "/")
	segments := parts[:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			segments = append(segments, part)
		}
	}
	return strings.Join(segments, "/")
}

func explainCLIError(err error) string {
	return formatCLIErrorText(classifyCLIError(err))
}

func splitFlag(value string) (string, string) {
	name, rest, ok := strings.Cut(value, "=")
	if ok {
		return name, "=" + rest
	}
	return value, ""
}

func extractUnknownValue(msg, marker string) string {
	idx := strings.Index(msg, marker)
	if idx == -1 {
		return ""
	}

	remaining := strings.TrimSpace(msg[idx+len(marker):])
	remaining = strings.TrimSpace(strings.TrimPrefix(remaining, ":"))

	for _, quote := range []string{"\"", "`"} {
		if rest, ok := strings.CutPrefix(remaining, quote); ok {
			if value, _, found := strings.Cut(rest, quote); found {
				return value
			}
		}
	}

	if fields := strings.Fields(remaining); len(fields) > 0 {
		return strings.Trim(fields[0], "\"`")
	}
	return ""
}

func closestMatch(target string, candidates []string, maxDistance int) (string, bool) {
	best := ""
	bestDist := maxDistance + 1

	for _, candidate := range candidates {
		if d := levenshtein(target, candidate); d < bestDist {
			bestDist = d
			best = candidate
		}
	}
	if bestDist > maxDistance {
		return "", false
	}
	return best, true
}

func levenshtein(a, b string) int {
	if a == b {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
