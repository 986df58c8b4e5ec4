package transport

import "github.com/sarchlab/akita/v4/sim"

// HaloMsg carries one packed staging buffer between two Cartesian
// neighbours. It generalises cgra.MoveMsg (a single uint32 lane) to a
// full face's worth of packed float64 fields, keeping the same
// builder idiom as cgra/msg.go's MoveMsgBuilder.
type HaloMsg struct {
	sim.MsgMeta

	SrcRank int
	DstRank int
	Tag     int
	Payload []float64
}

// Meta returns the message metadata, satisfying sim.Msg.
func (m *HaloMsg) Meta() *sim.MsgMeta {
	return &m.MsgMeta
}

// HaloMsgBuilder is a factory for HaloMsg, following the usual
// With*-chain-then-Build builder convention.
type HaloMsgBuilder struct {
	srcRank, dstRank int
	tag              int
	payload          []float64
}

func NewHaloMsgBuilder() HaloMsgBuilder {
	return HaloMsgBuilder{}
}

func (b HaloMsgBuilder) WithSrcRank(rank int) HaloMsgBuilder {
	b.srcRank = rank
	return b
}

func (b HaloMsgBuilder) WithDstRank(rank int) HaloMsgBuilder {
	b.dstRank = rank
	return b
}

func (b HaloMsgBuilder) WithTag(tag int) HaloMsgBuilder {
	b.tag = tag
	return b
}

func (b HaloMsgBuilder) WithPayload(payload []float64) HaloMsgBuilder {
	b.payload = payload
	return b
}

func (b HaloMsgBuilder) Build() *HaloMsg {
	return &HaloMsg{
		MsgMeta: sim.MsgMeta{
			ID: sim.GetIDGenerator().Generate(),
		},
		SrcRank: b.srcRank,
		DstRank: b.dstRank,
		Tag:     b.tag,
		Payload: b.payload,
	}
}
