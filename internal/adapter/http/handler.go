package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"hyligotchi/internal/app/action"
	"hyligotchi/internal/app/petsync"
	"hyligotchi/internal/app/ports"
	"hyligotchi/internal/domain/pet"
)

const defaultHistoryLimit = 20

// PetView is the read side of the sync engine.
type PetView interface {
	Identity() string
	State() (pet.Snapshot, petsync.Phase)
	Refresh(ctx context.Context) error
}

type BalanceView interface {
	Name() string
	Balances() map[pet.ItemKey]int
}

type Handler struct {
	ActionUC *action.UseCase
	Pet      PetView
	Balances []BalanceView
	Journal  ports.ActionLogRepository
	KPI      kpiSnapshotProvider

	CORSOrigins []string
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	identity := ""
	if h.Pet != nil {
		identity = h.Pet.Identity()
	}
	s.Use(corsMiddleware(h.CORSOrigins, identity))

	p := s.Group("/api/pet")
	p.GET("/snapshot", h.snapshot)
	p.GET("/balances", h.balances)
	p.GET("/history", h.history)
	p.POST("/refresh", h.refresh)
	p.POST("/init", h.initialize)
	p.POST("/feed/:kind", h.feed)
	p.POST("/medicine", h.medicine)
	p.POST("/clean", h.clean)
	p.POST("/resurrect", h.resurrect)
	p.POST("/tick", h.tick)

	s.GET("/ops/kpi", h.kpi)
}

type snapshotResponse struct {
	Identity string        `json:"identity"`
	Phase    petsync.Phase `json:"phase"`
	Snapshot pet.Snapshot  `json:"snapshot"`
}

func (h Handler) snapshot(_ context.Context, ctx *app.RequestContext) {
	if h.Pet == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "pet view not configured")
		return
	}
	snap, phase := h.Pet.State()
	ctx.JSON(consts.StatusOK, snapshotResponse{Identity: h.Pet.Identity(), Phase: phase, Snapshot: snap})
}

func (h Handler) refresh(c context.Context, ctx *app.RequestContext) {
	if h.Pet == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "pet view not configured")
		return
	}
	if err := h.Pet.Refresh(c); err != nil {
		writeError(ctx, err)
		return
	}
	h.snapshot(c, ctx)
}

func (h Handler) balances(_ context.Context, ctx *app.RequestContext) {
	out := map[string]map[pet.ItemKey]int{}
	for _, b := range h.Balances {
		out[b.Name()] = b.Balances()
	}
	ctx.JSON(consts.StatusOK, map[string]any{"balances": out})
}

func (h Handler) history(c context.Context, ctx *app.RequestContext) {
	if h.Journal == nil || h.Pet == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "journal not configured")
		return
	}
	limit := defaultHistoryLimit
	if raw := string(ctx.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeErrorBody(ctx, consts.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		limit = n
	}
	identity := h.Pet.Identity()
	records, err := h.Journal.ListByIdentity(c, identity, limit)
	if err != nil && !errors.Is(err, ports.ErrNotFound) {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, action.NewHistoryResponse(identity, records))
}

func (h Handler) initialize(c context.Context, ctx *app.RequestContext) {
	h.runAction(c, ctx, func(proof pet.ProofProducer) action.Request {
		return action.Request{Action: pet.ActionInitialize, Name: string(ctx.Query("name")), Proof: proof}
	})
}

func (h Handler) feed(c context.Context, ctx *app.RequestContext) {
	h.runAction(c, ctx, func(proof pet.ProofProducer) action.Request {
		return action.Request{
			Action: pet.ActionFeed,
			Feed:   pet.FeedKind(ctx.Param("kind")),
			Amount: queryAmount(ctx),
			Proof:  proof,
		}
	})
}

func (h Handler) medicine(c context.Context, ctx *app.RequestContext) {
	h.runAction(c, ctx, func(proof pet.ProofProducer) action.Request {
		return action.Request{Action: pet.ActionUseMedicine, Amount: queryAmount(ctx), Proof: proof}
	})
}

func (h Handler) clean(c context.Context, ctx *app.RequestContext) {
	h.runAction(c, ctx, func(proof pet.ProofProducer) action.Request {
		return action.Request{Action: pet.ActionClean, Proof: proof}
	})
}

func (h Handler) resurrect(c context.Context, ctx *app.RequestContext) {
	h.runAction(c, ctx, func(proof pet.ProofProducer) action.Request {
		return action.Request{Action: pet.ActionResurrect, Proof: proof}
	})
}

func (h Handler) tick(c context.Context, ctx *app.RequestContext) {
	h.runAction(c, ctx, func(proof pet.ProofProducer) action.Request {
		return action.Request{Action: pet.ActionAdvanceTime, Proof: proof}
	})
}

func (h Handler) runAction(c context.Context, ctx *app.RequestContext, build func(pet.ProofProducer) action.Request) {
	if h.ActionUC == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "actions not configured")
		return
	}
	proof, err := decodeProof(ctx.Request.Body())
	if err != nil {
		if errors.Is(err, pet.ErrMalformedCredential) {
			writeErrorBody(ctx, consts.StatusBadRequest, "malformed_credential", err.Error())
			return
		}
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	outcome, err := h.ActionUC.Execute(c, build(proof))
	if err != nil {
		writeActionRejected(ctx, err, outcome)
		return
	}
	ctx.JSON(consts.StatusOK, outcome)
}

type proofBody struct {
	Credentials []pet.Credential `json:"credentials"`
}

// decodeProof accepts either a bare two-element credential array or an object
// with a credentials field. An empty body yields a nil producer.
func decodeProof(body []byte) (pet.ProofProducer, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	var creds []pet.Credential
	if body[0] == '[' {
		if err := json.Unmarshal(body, &creds); err != nil {
			return nil, err
		}
	} else {
		var pb proofBody
		if err := json.Unmarshal(body, &pb); err != nil {
			return nil, err
		}
		if pb.Credentials == nil {
			return nil, nil
		}
		creds = pb.Credentials
	}
	if len(creds) != 2 {
		return nil, pet.ErrMalformedCredential
	}
	return pet.StaticProof([2]pet.Credential{creds[0], creds[1]}), nil
}

func queryAmount(ctx *app.RequestContext) int {
	n, _ := strconv.Atoi(string(ctx.Query("amount")))
	return n
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func statusFor(code string) int {
	switch code {
	case "invalid_request", "malformed_credential":
		return consts.StatusBadRequest
	case "missing_credential":
		return consts.StatusUnauthorized
	case "insufficient_resource", "action_in_progress", "mutation_in_flight", "no_pet", "pet_exists", "pet_dead", "pet_not_dead":
		return consts.StatusConflict
	case "remote_error", "malformed_response":
		return consts.StatusBadGateway
	case "network_unavailable", "not_loaded", "stopped":
		return consts.StatusServiceUnavailable
	default:
		return consts.StatusInternalServerError
	}
}

func writeError(ctx *app.RequestContext, err error) {
	code := action.ErrorCode(err)
	if errors.Is(err, ports.ErrNotFound) {
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
		return
	}
	status := statusFor(code)
	message := err.Error()
	if status == consts.StatusInternalServerError {
		message = "internal error"
	}
	writeErrorBody(ctx, status, code, message)
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// writeActionRejected reports a failed action. The outcome carries the
// user-facing message and the reconciled snapshot.
func writeActionRejected(ctx *app.RequestContext, err error, outcome action.Outcome) {
	code := action.ErrorCode(err)
	details := map[string]any{}
	var insufficient *action.InsufficientResourceError
	if errors.As(err, &insufficient) {
		details["item"] = insufficient.Item
		details["requested"] = insufficient.Requested
		details["available"] = insufficient.Available
	}
	var remote *ports.RemoteError
	if errors.As(err, &remote) {
		details["upstream_status"] = remote.StatusCode
	}
	if len(details) == 0 {
		details = nil
	}
	ctx.JSON(statusFor(code), map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": outcome.Message,
			"detail":  err.Error(),
			"details": details,
		},
		"outcome": outcome,
	})
}
