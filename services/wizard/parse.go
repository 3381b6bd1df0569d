package wizard

import (
	"encoding/json"
	"fmt"
)

// ParseEvent decodes an event sent by the browser. Only user-driven events are
// accepted; gateway and effect results cannot be injected this way.
func ParseEvent(kind string, payload json.RawMessage) (Event, error) {
	var ev Event
	switch kind {
	case "select_nationality":
		ev = &SelectNationality{}
	case "select_appointment_type":
		ev = &SelectAppointmentType{}
	case "set_traveller_count":
		ev = &SetTravellerCount{}
	case "update_traveller":
		ev = &UpdateTraveller{}
	case "update_details":
		ev = &UpdateDetails{}
	case "submit_account":
		ev = &SubmitAccount{}
	case "next":
		return Next{}, nil
	case "back":
		return Back{}, nil
	case "start_payment":
		return StartPayment{}, nil
	case "check_again":
		return CheckAgain{}, nil
	case "start_new_payment":
		return StartNewPayment{}, nil
	case "stop_polling":
		return StopPolling{}, nil
	default:
		return nil, fmt.Errorf("unknown event %q", kind)
	}
	if len(payload) > 0 && string(payload) != "null" {
		if err := json.Unmarshal(payload, ev); err != nil {
			return nil, fmt.Errorf("invalid %s payload: %w", kind, err)
		}
	}
	return deref(ev), nil
}

func deref(ev Event) Event {
	switch e := ev.(type) {
	case *SelectNationality:
		return *e
	case *SelectAppointmentType:
		return *e
	case *SetTravellerCount:
		return *e
	case *UpdateTraveller:
		return *e
	case *UpdateDetails:
		return *e
	case *SubmitAccount:
		return *e
	}
	return ev
}
