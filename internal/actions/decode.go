package actions

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/zulandar/marketlens/internal/models"
)

// decodeWorkers bounds the decode pool. Row decoding is pure and
// order-independent; results are reassembled in input order.
const decodeWorkers = 8

// requestEnvelope is the outer shape of the stored request column.
type requestEnvelope struct {
	Parameters json.RawMessage `json:"parameters"`
}

// resultEnvelope is the outer shape of the stored result column.
type resultEnvelope struct {
	IsError bool            `json:"is_error"`
	Content json.RawMessage `json:"content"`
}

// paramsHeader carries the discriminant and addressing fields shared
// by all parameter payloads.
type paramsHeader struct {
	Type    string `json:"type"`
	ToAgent string `json:"to_agent"`
}

// Decode turns one raw log row into a typed Action. It returns
// (nil, nil) for rows whose result marks the original action as failed
// at execution time: those carry no usable outcome and are excluded
// silently. Malformed rows return a DecodeFailure instead of an error;
// decoding never aborts the batch.
func Decode(row models.Action) (*Action, *DecodeFailure) {
	var result resultEnvelope
	if err := json.Unmarshal([]byte(row.Result), &result); err != nil {
		return nil, &DecodeFailure{RowID: row.ID, Reason: fmt.Sprintf("malformed result: %v", err)}
	}
	if result.IsError {
		return nil, nil
	}

	var req requestEnvelope
	if err := json.Unmarshal([]byte(row.Request), &req); err != nil {
		return nil, &DecodeFailure{RowID: row.ID, Reason: fmt.Sprintf("malformed request: %v", err)}
	}
	var header paramsHeader
	if err := json.Unmarshal(req.Parameters, &header); err != nil {
		return nil, &DecodeFailure{RowID: row.ID, Reason: fmt.Sprintf("malformed parameters: %v", err)}
	}

	action := Action{
		ID:        row.ID,
		FromAgent: row.AgentID,
		ToAgent:   header.ToAgent,
		CreatedAt: row.CreatedAt,
	}

	switch Kind(header.Type) {
	case KindSearch:
		var params struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal(req.Parameters, &params); err != nil {
			return nil, &DecodeFailure{RowID: row.ID, Reason: fmt.Sprintf("search parameters: %v", err)}
		}
		var content struct {
			BusinessIDs []string `json:"business_ids"`
		}
		if len(result.Content) > 0 {
			if err := json.Unmarshal(result.Content, &content); err != nil {
				return nil, &DecodeFailure{RowID: row.ID, Reason: fmt.Sprintf("search result: %v", err)}
			}
		}
		action.Kind = KindSearch
		action.ToAgent = "" // searches address the marketplace
		action.Search = &SearchPayload{Query: params.Query, BusinessIDs: content.BusinessIDs}

	case KindSendMessage:
		var params struct {
			Content string `json:"content"`
		}
		if err := json.Unmarshal(req.Parameters, &params); err != nil {
			return nil, &DecodeFailure{RowID: row.ID, Reason: fmt.Sprintf("message parameters: %v", err)}
		}
		if header.ToAgent == "" {
			return nil, &DecodeFailure{RowID: row.ID, Reason: "message without to_agent"}
		}
		action.Kind = KindSendMessage
		action.Message = &MessagePayload{Content: params.Content}

	case KindProposal:
		var params struct {
			Items      []ProposalItem `json:"items"`
			TotalPrice float64        `json:"total_price"`
		}
		if err := json.Unmarshal(req.Parameters, &params); err != nil {
			return nil, &DecodeFailure{RowID: row.ID, Reason: fmt.Sprintf("proposal parameters: %v", err)}
		}
		if header.ToAgent == "" {
			return nil, &DecodeFailure{RowID: row.ID, Reason: "proposal without to_agent"}
		}
		action.Kind = KindProposal
		action.Proposal = &ProposalPayload{Items: params.Items, TotalPrice: params.TotalPrice}

	case KindPayment:
		var params struct {
			Amount float64 `json:"amount"`
		}
		if err := json.Unmarshal(req.Parameters, &params); err != nil {
			return nil, &DecodeFailure{RowID: row.ID, Reason: fmt.Sprintf("payment parameters: %v", err)}
		}
		if header.ToAgent == "" {
			return nil, &DecodeFailure{RowID: row.ID, Reason: "payment without to_agent"}
		}
		action.Kind = KindPayment
		action.Payment = &PaymentPayload{Amount: params.Amount}

	default:
		return nil, &DecodeFailure{RowID: row.ID, Reason: fmt.Sprintf("unknown action type %q", header.Type)}
	}

	return &action, nil
}

// DecodeAll decodes a batch of rows on a bounded worker pool. The
// returned actions preserve the input row order; failures come back in
// input order too. Rows excluded for execution-time errors appear in
// neither list.
func DecodeAll(rows []models.Action) ([]Action, []DecodeFailure) {
	if len(rows) == 0 {
		return nil, nil
	}

	type slot struct {
		action  *Action
		failure *DecodeFailure
	}
	slots := make([]slot, len(rows))

	workers := decodeWorkers
	if workers > len(rows) {
		workers = len(rows)
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				a, f := Decode(rows[i])
				slots[i] = slot{action: a, failure: f}
			}
		}()
	}
	for i := range rows {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	var decoded []Action
	var failures []DecodeFailure
	for _, s := range slots {
		if s.failure != nil {
			failures = append(failures, *s.failure)
		}
		if s.action != nil {
			decoded = append(decoded, *s.action)
		}
	}
	return decoded, failures
}
