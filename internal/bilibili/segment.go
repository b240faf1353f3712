package bilibili

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"
)

// SegmentSeconds is the span of one comment segment.
const SegmentSeconds = 360

// DanmakuElem mirrors the platform's DanmakuElem message.
type DanmakuElem struct {
	ID       int64
	Progress int32
	Mode     int32
	FontSize int32
	Color    uint32
	MidHash  string
	Content  string
	Ctime    int64
	Weight   int32
	Action   string
	Pool     int32
	IDStr    string
	Attr     int32
}

// Text is the displayable comment text; see UnwrapContent.
func (e *DanmakuElem) Text() string {
	return UnwrapContent(e.Content)
}

// UnwrapContent returns the display text of an advanced comment, a JSON array
// whose fifth element is the text. Anything else is returned unchanged.
func UnwrapContent(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "[") {
		return content
	}
	var fields []json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil || len(fields) < 5 {
		return content
	}
	var text string
	if err := json.Unmarshal(fields[4], &text); err != nil {
		return content
	}
	return text
}

// Segment fetches one 6-minute comment segment of cid. index is 1-based.
func (c *Client) Segment(ctx context.Context, cid int64, index int, cred *Credential) ([]string, error) {
	if index < 1 {
		return nil, fmt.Errorf("segment index must be >= 1, got %d", index)
	}
	query := url.Values{
		"type":          {"1"},
		"oid":           {strconv.FormatInt(cid, 10)},
		"segment_index": {strconv.Itoa(index)},
	}
	body, err := c.get(ctx, segmentPath, query, cred)
	if err != nil {
		return nil, err
	}
	// Errors come back as a JSON envelope instead of protobuf.
	if len(body) > 0 && body[0] == '{' {
		if err := decodeEnvelope(segmentPath, body, nil); err != nil {
			return nil, err
		}
		return []string{}, nil
	}

	elems, err := DecodeSegReply(body)
	if err != nil {
		return nil, transportError(segmentPath, err)
	}
	texts := make([]string, 0, len(elems))
	for i := range elems {
		texts = append(texts, elems[i].Text())
	}
	return texts, nil
}

// DecodeSegReply decodes a DmSegMobileReply message: field 1 holds the
// repeated elements, everything else is skipped.
func DecodeSegReply(b []byte) ([]DanmakuElem, error) {
	var elems []DanmakuElem
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("seg reply tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		if num == 1 && typ == protowire.BytesType {
			raw, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("seg reply elem: %w", protowire.ParseError(n))
			}
			b = b[n:]
			elem, err := decodeElem(raw)
			if err != nil {
				return nil, err
			}
			elems = append(elems, elem)
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, b)
		if n < 0 {
			return nil, fmt.Errorf("seg reply field %d: %w", num, protowire.ParseError(n))
		}
		b = b[n:]
	}
	return elems, nil
}

func decodeElem(b []byte) (DanmakuElem, error) {
	var e DanmakuElem
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return e, fmt.Errorf("elem tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return e, fmt.Errorf("elem field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
			switch num {
			case 1:
				e.ID = int64(v)
			case 2:
				e.Progress = int32(v)
			case 3:
				e.Mode = int32(v)
			case 4:
				e.FontSize = int32(v)
			case 5:
				e.Color = uint32(v)
			case 8:
				e.Ctime = int64(v)
			case 9:
				e.Weight = int32(v)
			case 11:
				e.Pool = int32(v)
			case 13:
				e.Attr = int32(v)
			}
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return e, fmt.Errorf("elem field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
			switch num {
			case 6:
				e.MidHash = string(v)
			case 7:
				e.Content = string(v)
			case 10:
				e.Action = string(v)
			case 12:
				e.IDStr = string(v)
			}
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return e, fmt.Errorf("elem field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return e, nil
}
