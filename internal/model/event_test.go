package model

import (
	"encoding/json"
	"testing"
)

func TestEventRecordDecode(t *testing.T) {
	event := Event{
		ChainID:     137,
		BlockNumber: 100,
		TxHash:      "0xabc",
		LogIndex:    3,
		Address:     "0x1111111111111111111111111111111111111111",
		EventName:   EventSwap,
		Timestamp:   1700000000,
		Decoded: &SwapData{
			Sender:    "0x2222222222222222222222222222222222222222",
			Recipient: "0x3333333333333333333333333333333333333333",
			Amount0:   "-1000",
			Amount1:   "2000",
			Price:     "79228162514264337593543950336",
			Liquidity: "5000",
			Tick:      -15,
		},
	}

	line, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}

	var record EventRecord
	if err := json.Unmarshal(line, &record); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}

	decoded, err := record.Decode()
	if err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if decoded.EventName != EventSwap || decoded.LogIndex != 3 {
		t.Fatalf("envelope mismatch: %+v", decoded)
	}

	swap, ok := decoded.Decoded.(*SwapData)
	if !ok {
		t.Fatalf("payload type mismatch: %T", decoded.Decoded)
	}
	if swap.Amount0 != "-1000" || swap.Tick != -15 {
		t.Fatalf("payload mismatch: %+v", swap)
	}
}

func TestEventRecordDecodeUnknownName(t *testing.T) {
	record := EventRecord{EventName: "Sync", Decoded: json.RawMessage(`{}`)}
	if _, err := record.Decode(); err == nil {
		t.Fatalf("expected error for unknown event name")
	}
}
