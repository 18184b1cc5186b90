package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/solatis/costrules/internal/core/api"
	"github.com/solatis/costrules/internal/core/auth"
	"github.com/solatis/costrules/internal/core/config"
	"github.com/solatis/costrules/internal/logging"
	"github.com/solatis/costrules/internal/macro"
	"github.com/solatis/costrules/internal/rules"
	"github.com/solatis/costrules/internal/types"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"gopkg.in/yaml.v3"
)

// apiKeyEnv supplies the API key for --server when --api-key is not given.
const apiKeyEnv = config.EnvPrefix + "_API_KEY"

type generateOptions struct {
	*options
	indent    bool
	envelope  bool
	server    string
	requestID string
	apiKey    string
}

func newGenerateCmd(opts *options) *cobra.Command {
	g := &generateOptions{options: opts}

	cmd := &cobra.Command{
		Use:   "generate [file|-]",
		Short: "Generate the cost category rule list for a configuration document",
		Long: `Reads a YAML or JSON cost category configuration (or stdin) and prints the
ordered rule list as JSON. With --envelope the input is a macro event and the
macro reply is printed instead. With --server the request is sent to a running
'costrules serve'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: g.run,
	}

	cmd.Flags().BoolVar(&g.indent, "indent", false, "indent JSON output")
	cmd.Flags().BoolVar(&g.envelope, "envelope", false, "input is a macro event; print the macro reply")
	cmd.Flags().StringVar(&g.server, "server", "", "generate via a running server at host:port")
	cmd.Flags().StringVar(&g.requestID, "request-id", "", "request id sent with --server (default: a new UUID)")
	cmd.Flags().StringVar(&g.apiKey, "api-key", "", "API key sent with --server (default: $"+apiKeyEnv+")")

	return cmd
}

func (g *generateOptions) run(cmd *cobra.Command, args []string) error {
	logger := logging.GetLogger("generate")
	defer logging.LogDuration(logger, "generate")()

	data, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	if g.server != "" {
		return g.runRemote(cmd, data)
	}

	if g.envelope {
		req, err := macro.DecodeRequest(data)
		if err != nil {
			return err
		}
		return g.printResponse(cmd.OutOrStdout(), macro.Handle(req))
	}

	cfg, err := types.ParseConfiguration(data)
	if err != nil {
		return err
	}
	list, err := rules.Generate(cfg)
	if err != nil {
		return err
	}
	logger.Debug().Int("rule_count", len(list)).Msg("Generated rules")

	var out []byte
	if g.indent {
		out, err = rules.MarshalIndent(list, "", "  ")
	} else {
		out, err = rules.Marshal(list)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal rules: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

// runRemote sends the input to a running server.
func (g *generateOptions) runRemote(cmd *cobra.Command, data []byte) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}

	req, err := g.remoteRequest(data)
	if err != nil {
		return err
	}

	conn, err := grpc.NewClient(g.server,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.MaxCallSendMsgSize(cfg.MaxMessageSize)),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", g.server, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
	defer cancel()

	apiKey := g.apiKey
	if apiKey == "" {
		apiKey = os.Getenv(apiKeyEnv)
	}
	if apiKey != "" {
		ctx = auth.WithAPIKey(ctx, apiKey)
	}

	resp, err := api.NewRuleGeneratorClient(conn).GenerateRequest(ctx, req)
	if err != nil {
		return fmt.Errorf("generate request failed: %w", err)
	}

	if g.envelope {
		return g.printResponse(cmd.OutOrStdout(), resp)
	}
	if resp.Failed() {
		return fmt.Errorf("%s", resp.ErrorMessage)
	}
	return g.printFragment(cmd.OutOrStdout(), resp.Fragment)
}

// remoteRequest builds the envelope sent with --server.
func (g *generateOptions) remoteRequest(data []byte) (macro.Request, error) {
	var req macro.Request
	if g.envelope {
		decoded, err := macro.DecodeRequest(data)
		if err != nil {
			return macro.Request{}, err
		}
		req = decoded
	} else {
		fragment, err := documentToJSON(data)
		if err != nil {
			return macro.Request{}, err
		}
		req.Fragment = fragment
	}

	if g.requestID != "" {
		req.RequestID = g.requestID
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	return req, nil
}

// printResponse writes a macro reply and reports failure through the exit status.
func (g *generateOptions) printResponse(w io.Writer, resp macro.Response) error {
	var out []byte
	var err error
	if g.indent {
		out, err = json.MarshalIndent(resp, "", "  ")
	} else {
		out, err = json.Marshal(resp)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	if _, err := fmt.Fprintln(w, string(out)); err != nil {
		return err
	}
	if resp.Failed() {
		return fmt.Errorf("generation failed: %s", resp.ErrorMessage)
	}
	return nil
}

// printFragment writes a serialized rule list, indenting it when requested.
func (g *generateOptions) printFragment(w io.Writer, fragment string) error {
	out := []byte(fragment)
	if g.indent {
		var buf bytes.Buffer
		if err := json.Indent(&buf, out, "", "  "); err != nil {
			return fmt.Errorf("invalid rule list from server: %w", err)
		}
		out = buf.Bytes()
	}
	_, err := fmt.Fprintln(w, string(out))
	return err
}

// readInput reads the named file, or stdin for "-" or no argument.
func readInput(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(io.LimitReader(stdin, types.MaxDocumentSize+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return data, nil
}

// documentToJSON converts a YAML or JSON document to JSON for the envelope.
// Every configuration leaf is a string, so scalars keep their literal text:
// account 012345678901 stays "012345678901" instead of becoming a number.
func documentToJSON(data []byte) (json.RawMessage, error) {
	if len(data) > types.MaxDocumentSize {
		return nil, types.ErrDocumentTooLarge
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidDocument, err)
	}
	doc, err := nodeValue(&root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidDocument, err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidDocument, err)
	}
	return out, nil
}

// nodeValue maps a YAML node onto JSON values. Null scalars become nil,
// other scalars their source text. Mapping entries with non-scalar keys
// are dropped; duplicate keys are an error.
func nodeValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return nodeValue(n.Content[0])
	case yaml.AliasNode:
		return nodeValue(n.Alias)
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		var merges []*yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, value := n.Content[i], n.Content[i+1]
			if key.Kind != yaml.ScalarNode {
				continue
			}
			if key.ShortTag() == "!!merge" {
				merges = append(merges, value)
				continue
			}
			if _, ok := m[key.Value]; ok {
				return nil, fmt.Errorf("line %d: mapping key %q already defined", key.Line, key.Value)
			}
			v, err := nodeValue(value)
			if err != nil {
				return nil, err
			}
			m[key.Value] = v
		}
		// Explicit keys win over merged ones, earlier merges over later.
		for _, merge := range merges {
			if err := mergeInto(m, merge); err != nil {
				return nil, err
			}
		}
		return m, nil
	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := nodeValue(item)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" {
			return nil, nil
		}
		return n.Value, nil
	}
	return nil, nil
}

// mergeInto adds the entries of a merged mapping, or sequence of mappings,
// that m does not define yet.
func mergeInto(m map[string]any, n *yaml.Node) error {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n.Kind == yaml.SequenceNode {
		for _, item := range n.Content {
			if err := mergeInto(m, item); err != nil {
				return err
			}
		}
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: merge value must be a mapping", n.Line)
	}
	v, err := nodeValue(n)
	if err != nil {
		return err
	}
	for key, value := range v.(map[string]any) {
		if _, ok := m[key]; !ok {
			m[key] = value
		}
	}
	return nil
}
