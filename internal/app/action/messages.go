package action

import (
	"errors"
	"strings"

	"hyligotchi/internal/app/petsync"
	"hyligotchi/internal/app/ports"
	"hyligotchi/internal/domain/pet"
)

type errorMessage struct {
	Err     error
	Message string
}

// reasonMessage maps a fragment of the server's error text to a message.
type reasonMessage struct {
	Contains string
	Message  string
}

var commonErrorMessages = []errorMessage{
	{Err: ErrActionInProgress, Message: "Please wait for the current action!"},
	{Err: ErrNoPet, Message: "No pet yet!"},
	{Err: ErrPetDead, Message: "Your pet is dead!"},
	{Err: ErrPetExists, Message: "Pet already exists!"},
	{Err: ErrPetNotDead, Message: "Pet is not dead!"},
	{Err: petsync.ErrNotLoaded, Message: "Still loading!"},
	{Err: petsync.ErrMutationInFlight, Message: "Please wait for the current action!"},
	{Err: pet.ErrMissingCredential, Message: "Wallet session required!"},
	{Err: pet.ErrMalformedCredential, Message: "Wallet session required!"},
	{Err: ErrInvalidRequest, Message: "Invalid action!"},
}

func messageFor(ac *ActionContext, err error) string {
	spec, ok := actionRegistry()[ac.In.Req.Action]
	if !ok {
		if err == nil {
			return ""
		}
		return "Invalid action!"
	}
	ms := spec.Handler.Messages(ac)

	if err == nil {
		if ac.Tmp.Skipped {
			return ms.Skipped
		}
		return ms.Success
	}
	if errors.Is(err, ErrInsufficientResource) && ms.Insufficient != "" {
		return ms.Insufficient
	}
	for _, m := range ms.ByError {
		if errors.Is(err, m.Err) {
			return m.Message
		}
	}
	var remoteErr *ports.RemoteError
	if errors.As(err, &remoteErr) {
		body := strings.ToLower(remoteErr.Body)
		for _, r := range ms.ByReason {
			if strings.Contains(body, r.Contains) {
				return r.Message
			}
		}
	}
	for _, m := range commonErrorMessages {
		if errors.Is(err, m.Err) {
			return m.Message
		}
	}
	return ms.Failure
}

// ErrorCode is the stable code reported in metrics, the journal and HTTP
// error bodies.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInsufficientResource):
		return "insufficient_resource"
	case errors.Is(err, pet.ErrMissingCredential):
		return "missing_credential"
	case errors.Is(err, pet.ErrMalformedCredential):
		return "malformed_credential"
	case errors.Is(err, ports.ErrRemote):
		return "remote_error"
	case errors.Is(err, ports.ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, ports.ErrNetworkUnavailable):
		return "network_unavailable"
	case errors.Is(err, ErrActionInProgress):
		return "action_in_progress"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrNoPet):
		return "no_pet"
	case errors.Is(err, ErrPetExists):
		return "pet_exists"
	case errors.Is(err, ErrPetDead):
		return "pet_dead"
	case errors.Is(err, ErrPetNotDead):
		return "pet_not_dead"
	case errors.Is(err, petsync.ErrNotLoaded):
		return "not_loaded"
	case errors.Is(err, petsync.ErrMutationInFlight):
		return "mutation_in_flight"
	case errors.Is(err, petsync.ErrStopped):
		return "stopped"
	default:
		return "internal_error"
	}
}
