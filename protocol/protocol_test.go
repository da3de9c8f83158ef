package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestValidate(t *testing.T) {
	assert.NoError(t, Join("a").Validate())
	assert.NoError(t, ParamsFrom("a", Params{X: Float(1)}).Validate())
	assert.ErrorIs(t, Leave("").Validate(), ErrMissingID)
	assert.ErrorIs(t, Message{T: MsgParams, ID: "a"}.Validate(), ErrMissingBody)
	assert.ErrorIs(t, Message{T: "shout", ID: "a"}.Validate(), ErrUnknownType)
}

func TestValidateOutbound(t *testing.T) {
	assert.NoError(t, ParamsFrom("", Params{}).ValidateOutbound())
	assert.ErrorIs(t, Join("a").ValidateOutbound(), ErrUnknownType)
	assert.ErrorIs(t, Message{T: MsgParams}.ValidateOutbound(), ErrMissingBody)
}

func TestJSONWireNames(t *testing.T) {
	m := ParamsFrom("p1", Params{
		XVelocity:    Float(0),
		IsThrottling: Mag(0.5),
		IsShot:       Bool(false),
		Points:       Int(3),
	})
	data, err := JSONCodec{}.Encode(m)
	require.NoError(t, err)

	assert.JSONEq(t,
		`{"t":"params","id":"p1","p":{"xVelocity":0,"isThrottling":0.5,"isShot":false,"points":3}}`,
		string(data))
}

func TestJSONDecodePartial(t *testing.T) {
	m, err := JSONCodec{}.Decode([]byte(`{"t":"params","id":"x","p":{"angle":1.5,"name":"kit"}}`))
	require.NoError(t, err)
	require.NotNil(t, m.Params)

	assert.Equal(t, 1.5, *m.Params.Angle)
	assert.Equal(t, "kit", *m.Params.Name)
	assert.Nil(t, m.Params.X)
	assert.Nil(t, m.Params.IsHit)
}

func TestJSONDecodeRejectsUnknownFields(t *testing.T) {
	_, err := JSONCodec{}.Decode([]byte(`{"t":"params","id":"x","p":{"x":1,"$el":{}}}`))
	assert.Error(t, err)
}

func TestJSONMagnitudeFromBool(t *testing.T) {
	m, err := JSONCodec{}.Decode([]byte(`{"t":"params","id":"x","p":{"isShooting":true,"isReversing":false,"isTurningLeft":0.3}}`))
	require.NoError(t, err)

	assert.Equal(t, Magnitude(1), *m.Params.IsShooting)
	assert.Equal(t, Magnitude(0), *m.Params.IsReversing)
	assert.Equal(t, Magnitude(0.3), *m.Params.IsTurningLeft)
}

func TestJSONMagnitudeRejectsString(t *testing.T) {
	_, err := JSONCodec{}.Decode([]byte(`{"t":"params","id":"x","p":{"isShooting":"yes"}}`))
	assert.Error(t, err)
}

func TestMsgpackDecodePartial(t *testing.T) {
	in := ParamsFrom("p9", Params{Y: Float(-3.25), IsTurningRight: Mag(1), IsHit: Bool(true)})
	data, err := MsgpackCodec{}.Encode(in)
	require.NoError(t, err)

	out, err := DecodeFrame(true, data)
	require.NoError(t, err)
	assert.Equal(t, "p9", out.ID)
	assert.Equal(t, -3.25, *out.Params.Y)
	assert.Equal(t, Magnitude(1), *out.Params.IsTurningRight)
	assert.True(t, *out.Params.IsHit)
	assert.Nil(t, out.Params.X)
}

func TestMsgpackMagnitudeFromBoolAndInt(t *testing.T) {
	raw, err := msgpack.Marshal(map[string]any{
		"t":  "params",
		"id": "b",
		"p": map[string]any{
			"isThrottling": true,
			"isShooting":   1,
		},
	})
	require.NoError(t, err)

	m, err := MsgpackCodec{}.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, Magnitude(1), *m.Params.IsThrottling)
	assert.Equal(t, Magnitude(1), *m.Params.IsShooting)
}

func TestMsgpackRejectsUnknownFields(t *testing.T) {
	raw, err := msgpack.Marshal(map[string]any{"t": "leave", "id": "b", "extra": 1})
	require.NoError(t, err)

	_, err = MsgpackCodec{}.Decode(raw)
	assert.Error(t, err)
}

func TestCodecFor(t *testing.T) {
	c, err := CodecFor("")
	require.NoError(t, err)
	assert.Equal(t, "json", c.Name())
	assert.False(t, c.Binary())

	c, err = CodecFor("msgpack")
	require.NoError(t, err)
	assert.True(t, c.Binary())

	_, err = CodecFor("xml")
	assert.Error(t, err)
}
