package stream

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"nathanbeddoewebdev/chainwatch/internal/domain"
)

const (
	methodClientVersion  = "web3_clientVersion"
	methodGasPrice       = "eth_gasPrice"
	methodBlockNumber    = "eth_blockNumber"
	methodBlockByNumber  = "eth_getBlockByNumber"
	methodSubscribe      = "eth_subscribe"
	methodSubscription   = "eth_subscription"
	subscriptionNewHeads = "newHeads"
)

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type jsonWriter interface {
	writeJSON(v any) error
}

// rpcHandler tracks the request ids of one connection. A reconnect starts
// a fresh handler, so responses to requests of a dropped connection are
// never matched.
type rpcHandler struct {
	w        jsonWriter
	backfill int
	now      func() time.Time
	log      logrus.FieldLogger

	nextID  uint64
	pending map[uint64]string
}

func newRPCHandler(w jsonWriter, backfill int, now func() time.Time, log logrus.FieldLogger) *rpcHandler {
	return &rpcHandler{
		w:        w,
		backfill: backfill,
		now:      now,
		log:      log,
		pending:  map[uint64]string{},
	}
}

func (h *rpcHandler) call(method string, params ...any) error {
	h.nextID++
	if params == nil {
		params = []any{}
	}
	req := rpcRequest{JSONRPC: "2.0", ID: h.nextID, Method: method, Params: params}
	if err := h.w.writeJSON(req); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	h.pending[h.nextID] = method
	return nil
}

func (h *rpcHandler) start() error {
	for _, method := range []string{methodClientVersion, methodGasPrice, methodBlockNumber} {
		if err := h.call(method); err != nil {
			return err
		}
	}
	return h.call(methodSubscribe, subscriptionNewHeads)
}

func (h *rpcHandler) handle(msg []byte) ([]domain.Update, error) {
	if !gjson.ValidBytes(msg) {
		return nil, decodeError("invalid json", msg)
	}
	r := gjson.ParseBytes(msg)

	if r.Get("method").Str == methodSubscription {
		return h.handleHead(r.Get("params.result"), msg)
	}

	id := r.Get("id")
	if !id.Exists() {
		return nil, decodeError("unrecognized message", msg)
	}
	method, ok := h.pending[id.Uint()]
	if !ok {
		return nil, decodeError("response to unknown request", msg)
	}
	delete(h.pending, id.Uint())

	if e := r.Get("error"); e.Exists() {
		return nil, decodeError(method+" failed: "+e.Get("message").String(), msg)
	}
	result := r.Get("result")

	switch method {
	case methodClientVersion:
		return []domain.Update{domain.NodeInfoUpdate{Info: domain.NodeInfo{ClientVersion: result.String()}}}, nil

	case methodGasPrice:
		wei, err := parseQuantity(result)
		if err != nil {
			return nil, decodeError("gas price: "+err.Error(), msg)
		}
		return []domain.Update{domain.NodeInfoUpdate{Info: domain.NodeInfo{GasPriceWei: wei}}}, nil

	case methodBlockNumber:
		head, err := parseQuantity(result)
		if err != nil {
			return nil, decodeError("block number: "+err.Error(), msg)
		}
		return nil, h.requestBackfill(head)

	case methodBlockByNumber:
		if result.Type == gjson.Null || !result.Exists() {
			return nil, decodeError("block not found", msg)
		}
		ev, err := decodeBlock(result, rpcBlockFields, h.now())
		if err != nil {
			return nil, decodeError(err.Error(), msg)
		}
		return []domain.Update{domain.BlockUpdate{Event: ev}}, nil

	case methodSubscribe:
		h.log.WithField("subscription", result.String()).Debug("subscribed to new heads")
		return nil, nil
	}
	return nil, nil
}

// handleHead emits the header immediately, then asks for the full block
// (which re-emits the same number with its transaction count) and a fresh
// gas price.
func (h *rpcHandler) handleHead(head gjson.Result, msg []byte) ([]domain.Update, error) {
	if !head.Exists() {
		return nil, decodeError("subscription without result", msg)
	}
	ev, err := decodeBlock(head, rpcBlockFields, h.now())
	if err != nil {
		return nil, decodeError(err.Error(), msg)
	}
	updates := []domain.Update{domain.BlockUpdate{Event: ev}}

	if err := h.call(methodBlockByNumber, hexQuantity(ev.Number), false); err != nil {
		return updates, err
	}
	if err := h.call(methodGasPrice); err != nil {
		return updates, err
	}
	return updates, nil
}

// requestBackfill asks for the most recent blocks up to head, oldest first.
func (h *rpcHandler) requestBackfill(head uint64) error {
	if h.backfill <= 0 {
		return nil
	}
	first := uint64(0)
	if head+1 > uint64(h.backfill) {
		first = head + 1 - uint64(h.backfill)
	}
	for n := first; n <= head; n++ {
		if err := h.call(methodBlockByNumber, hexQuantity(n), false); err != nil {
			return err
		}
	}
	return nil
}
