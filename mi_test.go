package gdbmi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	cases := []struct {
		name string
		line string
		kind RecordKind
	}{
		{"result", `12^done,value="42"`, RecordResult},
		{"async-exec", `*stopped,reason="breakpoint-hit",bkptno="1"`, RecordAsyncExec},
		{"async-notify", `=thread-group-started,id="i1",pid="4321"`, RecordAsyncNotify},
		{"console-stream", `~"Breakpoint 1 at 0x1149: file main.c, line 10.\n"`, RecordStreamConsole},
		{"target-stream", `@"hello from inferior\n"`, RecordStreamTarget},
		{"log-stream", `&"undefined command\n"`, RecordStreamLog},
		{"prompt", `(gdb)`, RecordPrompt},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, err := ParseLine(tc.line)
			require.NoError(t, err)
			assert.Equal(t, tc.kind, rec.Kind)
		})
	}
}

func TestParseLineToken(t *testing.T) {
	rec, err := ParseLine(`7^done`)
	require.NoError(t, err)
	assert.EqualValues(t, 7, rec.Token)
	assert.Equal(t, ResultDone, rec.ResultClass)
}

func TestParseFieldListTuple(t *testing.T) {
	rec, err := ParseLine(`1^done,bkpt={number="1",type="breakpoint",disp="keep",enabled="y",addr="0x1149",func="main",file="main.c",fullname="/tmp/main.c",line="10",times="0"}`)
	require.NoError(t, err)
	bkpt := rec.Field("bkpt")
	assert.True(t, bkpt.HasField("number"))
	assert.Equal(t, "1", bkpt.Field("number").Literal())
	assert.Equal(t, "main", bkpt.Field("func").Literal())
}

func TestParseFieldListList(t *testing.T) {
	rec, err := ParseLine(`1^done,stack=[frame={level="0",func="foo"},frame={level="1",func="main"}]`)
	require.NoError(t, err)
	stack := rec.Field("stack")
	require.Equal(t, 2, stack.Size())
	assert.Equal(t, "foo", stack.At(0).Field("frame").Field("func").Literal())
	assert.Equal(t, "main", stack.At(1).Field("frame").Field("func").Literal())
}

func TestParseQuotedStringEscapes(t *testing.T) {
	rec, err := ParseLine(`1^done,msg="line one\nline two \"quoted\""`)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two \"quoted\"", rec.Field("msg").Literal())
}

func TestParseLineEmptyAfterToken(t *testing.T) {
	_, err := ParseLine(`42`)
	assert.Error(t, err)
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestParseBreakpointCreatedNotification(t *testing.T) {
	rec, err := ParseLine(`=breakpoint-created,bkpt={number="2",type="breakpoint",disp="keep",enabled="y",addr="0x00001149",func="main",file="main.c",line="10",times="0"}`)
	require.NoError(t, err)
	bp := parseBreakpoint(rec.Field("bkpt"))
	assert.Equal(t, "2", bp.Number)
	assert.Equal(t, "main", bp.Function)
	assert.Equal(t, 10, bp.Line)
}
