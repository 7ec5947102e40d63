// SPDX-License-Identifier: MPL-2.0

package host

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"maps"
	"slices"
	"strings"

	"github.com/invowk/envinject/internal/config"
	"github.com/invowk/envinject/internal/issue"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DefaultServiceFile is the descriptor file name looked up when none is given.
const DefaultServiceFile = "serverless.yml"

// MaxServiceFileSize bounds descriptor reads (4 MiB).
const MaxServiceFileSize int64 = 4 << 20

type (
	// Service is the subset of a serverless service descriptor the injector
	// works with. Environment maps are always non-nil after parsing.
	Service struct {
		Name      string
		Provider  Provider
		Functions []*Function
		Custom    map[string]any
	}

	// Provider holds provider-wide settings.
	Provider struct {
		Name        string
		Stage       string
		Environment map[string]string
	}

	// Function is a single deployable function.
	Function struct {
		Name        string
		Handler     string
		Environment map[string]string
	}

	// ParseError reports a descriptor that is not valid YAML or does not have
	// the expected shape.
	ParseError struct {
		File string
		Line int
		Msg  string
	}
)

// ErrServiceParse is the sentinel wrapped by ParseError.
var ErrServiceParse = errors.New("invalid service descriptor")

// Error implements the error interface for ParseError.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Msg)
}

// Unwrap returns ErrServiceParse for errors.Is() compatibility.
func (e *ParseError) Unwrap() error { return ErrServiceParse }

// Function returns the function with the given name, or nil.
func (s *Service) Function(name string) *Function {
	for _, fn := range s.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// FunctionNames returns function names in declaration order.
func (s *Service) FunctionNames() []string {
	names := make([]string, len(s.Functions))
	for i, fn := range s.Functions {
		names[i] = fn.Name
	}
	return names
}

// Stage resolves the effective stage: a non-blank flag wins, then the
// provider's stage, then config.DefaultStage.
func (s *Service) Stage(flag string) config.Stage {
	if strings.TrimSpace(flag) != "" {
		return config.Stage(flag)
	}
	return config.Stage(s.Provider.Stage).OrDefault()
}

// CustomSection returns custom.<name>, or nil when absent.
func (s *Service) CustomSection(name string) any {
	if s.Custom == nil {
		return nil
	}
	return s.Custom[name]
}

// LoadService reads and parses the descriptor at path.
func LoadService(fsys afero.Fs, path string) (*Service, error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	info, err := fsys.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, issue.NewErrorContext().
			WithOperation("load service descriptor").
			WithResource(path).
			WithIssue(issue.ServiceFileNotFoundId).
			WithSuggestion("Run envinject next to serverless.yml or pass --service").
			Wrap(fmt.Errorf("service descriptor not found: %s", path)).
			BuildError()
	}
	if err == nil && info.Size() > MaxServiceFileSize {
		err = fmt.Errorf("file size %d bytes exceeds maximum %d bytes", info.Size(), MaxServiceFileSize)
	}
	var data []byte
	if err == nil {
		data, err = afero.ReadFile(fsys, path)
	}
	if err != nil {
		return nil, issue.WrapWithContext(err, "load service descriptor", path)
	}

	svc, err := Parse(data, path)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("parse service descriptor").
			WithResource(path).
			WithIssue(issue.ServiceParseErrorId).
			WithSuggestion("functions and provider.environment must be mappings").
			Wrap(err).
			BuildError()
	}
	return svc, nil
}

// Parse decodes a YAML service descriptor. Function order follows the
// document. A null environment value decodes to the empty string.
func Parse(data []byte, filename string) (*Service, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{File: filename, Msg: err.Error()}
	}

	svc := &Service{
		Provider: Provider{Environment: map[string]string{}},
		Custom:   map[string]any{},
	}
	if len(doc.Content) == 0 {
		return svc, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, shapeError(filename, root, "document must be a mapping")
	}

	for key, value := range mappingPairs(root) {
		var err error
		switch key.Value {
		case "service":
			svc.Name, err = serviceName(filename, value)
		case "provider":
			err = parseProvider(filename, value, &svc.Provider)
		case "functions":
			svc.Functions, err = parseFunctions(filename, value)
		case "custom":
			if !isNull(value) {
				err = value.Decode(&svc.Custom)
			}
			if err == nil && svc.Custom == nil {
				svc.Custom = map[string]any{}
			}
		}
		if err != nil {
			return nil, asParseError(filename, value, err)
		}
	}
	return svc, nil
}

// Encode writes the service back as YAML. Environment keys are sorted,
// functions keep their order.
func Encode(w io.Writer, svc *Service) error {
	root := &yaml.Node{Kind: yaml.MappingNode}

	if svc.Name != "" {
		appendPair(root, "service", scalar(svc.Name))
	}

	provider := &yaml.Node{Kind: yaml.MappingNode}
	if svc.Provider.Name != "" {
		appendPair(provider, "name", scalar(svc.Provider.Name))
	}
	if svc.Provider.Stage != "" {
		appendPair(provider, "stage", scalar(svc.Provider.Stage))
	}
	if len(svc.Provider.Environment) > 0 {
		appendPair(provider, "environment", envNode(svc.Provider.Environment))
	}
	appendPair(root, "provider", provider)

	if len(svc.Functions) > 0 {
		functions := &yaml.Node{Kind: yaml.MappingNode}
		for _, fn := range svc.Functions {
			node := &yaml.Node{Kind: yaml.MappingNode}
			if fn.Handler != "" {
				appendPair(node, "handler", scalar(fn.Handler))
			}
			if len(fn.Environment) > 0 {
				appendPair(node, "environment", envNode(fn.Environment))
			}
			appendPair(functions, fn.Name, node)
		}
		appendPair(root, "functions", functions)
	}

	if len(svc.Custom) > 0 {
		custom := &yaml.Node{}
		if err := custom.Encode(svc.Custom); err != nil {
			return fmt.Errorf("encode custom section: %w", err)
		}
		appendPair(root, "custom", custom)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encode service: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode service: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func serviceName(filename string, node *yaml.Node) (string, error) {
	switch {
	case isNull(node):
		return "", nil
	case node.Kind == yaml.ScalarNode:
		return node.Value, nil
	case node.Kind == yaml.MappingNode:
		// Older descriptors use service: {name: ...}.
		for key, value := range mappingPairs(node) {
			if key.Value == "name" && value.Kind == yaml.ScalarNode {
				return value.Value, nil
			}
		}
		return "", nil
	default:
		return "", shapeError(filename, node, "service must be a string")
	}
}

func parseProvider(filename string, node *yaml.Node, p *Provider) error {
	if isNull(node) {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return shapeError(filename, node, "provider must be a mapping")
	}
	for key, value := range mappingPairs(node) {
		switch key.Value {
		case "name":
			p.Name = value.Value
		case "stage":
			p.Stage = value.Value
		case "environment":
			env, err := parseEnvironment(filename, value)
			if err != nil {
				return err
			}
			p.Environment = env
		}
	}
	return nil
}

func parseFunctions(filename string, node *yaml.Node) ([]*Function, error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, shapeError(filename, node, "functions must be a mapping")
	}

	var functions []*Function
	for key, value := range mappingPairs(node) {
		fn := &Function{Name: key.Value, Environment: map[string]string{}}
		if !isNull(value) {
			if value.Kind != yaml.MappingNode {
				return nil, shapeError(filename, value, fmt.Sprintf("function %q must be a mapping", key.Value))
			}
			for fk, fv := range mappingPairs(value) {
				switch fk.Value {
				case "handler":
					fn.Handler = fv.Value
				case "environment":
					env, err := parseEnvironment(filename, fv)
					if err != nil {
						return nil, err
					}
					fn.Environment = env
				}
			}
		}
		functions = append(functions, fn)
	}
	return functions, nil
}

func parseEnvironment(filename string, node *yaml.Node) (map[string]string, error) {
	env := map[string]string{}
	if isNull(node) {
		return env, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, shapeError(filename, node, "environment must be a mapping")
	}
	for key, value := range mappingPairs(node) {
		switch {
		case isNull(value):
			env[key.Value] = ""
		case value.Kind == yaml.ScalarNode:
			env[key.Value] = value.Value
		default:
			return nil, shapeError(filename, value, fmt.Sprintf("environment value %q must be a scalar", key.Value))
		}
	}
	return env, nil
}

// mappingPairs yields key/value node pairs of a mapping node.
func mappingPairs(node *yaml.Node) iter.Seq2[*yaml.Node, *yaml.Node] {
	return func(yield func(key, value *yaml.Node) bool) {
		for i := 0; i+1 < len(node.Content); i += 2 {
			if !yield(node.Content[i], node.Content[i+1]) {
				return
			}
		}
	}
}

func isNull(node *yaml.Node) bool {
	return node == nil || (node.Kind == yaml.ScalarNode && node.Tag == "!!null")
}

func shapeError(filename string, node *yaml.Node, msg string) error {
	return &ParseError{File: filename, Line: node.Line, Msg: msg}
}

func asParseError(filename string, node *yaml.Node, err error) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		return err
	}
	return &ParseError{File: filename, Line: node.Line, Msg: err.Error()}
}

func scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func appendPair(mapping *yaml.Node, key string, value *yaml.Node) {
	mapping.Content = append(mapping.Content, scalar(key), value)
}

func envNode(env map[string]string) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range slices.Sorted(maps.Keys(env)) {
		appendPair(node, key, scalar(env[key]))
	}
	return node
}
