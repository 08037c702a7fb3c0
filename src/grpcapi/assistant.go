package grpcapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"finnie/src/helpers"
	"finnie/src/interfaces"
	"finnie/src/llm"
	"finnie/src/logger"
	"finnie/src/mcp"
	"finnie/src/models"
	"finnie/src/utils"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// AssistantService implements AssistantServer on top of the orchestrator and
// the tool registry.
type AssistantService struct {
	Config       *models.MConfig
	Orchestrator interfaces.ITurnRunner
	Tools        *mcp.ToolRegistry
	// HealthFunc is shared with the HTTP surface; nil reports a bare status
	HealthFunc   func() map[string]interface{}
	Logger       *logger.Logger
}

// NewAssistantService creates a new instance of AssistantService
func NewAssistantService(
	cfg *models.MConfig,
	orch interfaces.ITurnRunner,
	tools *mcp.ToolRegistry,
	health func() map[string]interface{},
	log *logger.Logger,
) *AssistantService {
	return &AssistantService{
		Config:       cfg,
		Orchestrator: orch,
		Tools:        tools,
		HealthFunc:   health,
		Logger:       log,
	}
}

var _ AssistantServer = (*AssistantService)(nil)

// -----------------------------------------------------------------------------

func (s *AssistantService) RunTurn(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.AsMap()

	message := strings.TrimSpace(stringField(fields, "message"))
	if message == "" {
		return nil, status.Error(codes.InvalidArgument, "message is required")
	}
	if s.Orchestrator == nil {
		return nil, status.Error(codes.Unavailable, "orchestrator not configured")
	}

	var portfolio *models.MPortfolio
	if raw, ok := fields["portfolio_data"]; ok && raw != nil {
		portfolio = &models.MPortfolio{}
		if err := remarshal(raw, portfolio); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid portfolio_data: %v", err)
		}
	}

	sessionID := stringField(fields, "session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	var llmCfg models.MLLMConfig
	if s.Config != nil {
		llmCfg = s.Config.LLM
	}
	provider := llm.ResolveProvider(llmCfg,
		stringField(fields, "llm_provider"),
		stringField(fields, "llm_model"),
		stringField(fields, "llm_api_key"))

	res, err := s.Orchestrator.RunTurn(ctx, models.MTurnRequest{
		UserInput: message,
		SessionID: sessionID,
		Provider:  provider,
		Portfolio: portfolio,
		Tickers:   utils.ResolveTickers(message),
	})
	if err != nil {
		if helpers.IsContractViolation(err) {
			s.Logger.Error("RunTurn contract violation: %v", err)
		} else {
			s.Logger.Error("RunTurn failed: %v", err)
		}
		return nil, status.Errorf(codes.Internal, "Agent processing error: %v", err)
	}

	pkg := res.Package
	if pkg == nil {
		pkg = &models.MFinalPackage{}
	}
	var primary interface{}
	if pkg.PrimaryRole != nil {
		primary = string(*pkg.PrimaryRole)
	}

	return toStruct(map[string]interface{}{
		"final_text":     pkg.FinalText,
		"primary_role":   primary,
		"visualizations": nonNil(pkg.Visualizations),
		"disclaimers":    nonNilStrings(pkg.Disclaimers),
		"intent":         string(res.Intent),
		"confidence":     res.Confidence,
		"session_id":     sessionID,
	})
}

// -----------------------------------------------------------------------------

func (s *AssistantService) ListTools(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if s.Tools == nil {
		return nil, status.Error(codes.Unavailable, "tools are not configured")
	}
	tools := s.Tools.ListTools()
	return toStruct(map[string]interface{}{"tools": tools, "count": len(tools)})
}

// -----------------------------------------------------------------------------

func (s *AssistantService) CallTool(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.Tools == nil {
		return nil, status.Error(codes.Unavailable, "tools are not configured")
	}
	fields := req.AsMap()

	name := strings.TrimSpace(stringField(fields, "tool_name"))
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "tool_name is required")
	}
	if !s.Tools.Has(name) {
		return nil, status.Errorf(codes.InvalidArgument, "Unknown tool: %s", name)
	}

	args, _ := fields["arguments"].(map[string]interface{})
	if args == nil {
		args = map[string]interface{}{}
	}
	return toStruct(s.Tools.Call(ctx, name, args))
}

// -----------------------------------------------------------------------------

func (s *AssistantService) Health(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if s.HealthFunc == nil {
		return toStruct(map[string]interface{}{"status": "healthy"})
	}
	return toStruct(s.HealthFunc())
}

// -----------------------------------------------------------------------------
// Struct helpers
// -----------------------------------------------------------------------------

// toStruct converts any JSON-encodable value into a Struct. The JSON round
// trip applies the same field names the HTTP surface emits.
func toStruct(v interface{}) (*structpb.Struct, error) {
	var m map[string]interface{}
	if err := remarshal(v, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

func remarshal(in, out interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func stringField(fields map[string]interface{}, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func nonNil(v []models.MVisualization) []models.MVisualization {
	if v == nil {
		return []models.MVisualization{}
	}
	return v
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
