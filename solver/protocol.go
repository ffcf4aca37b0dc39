// Package solver runs boolean mesh computations off the caller's call stack.
// Callers and workers exchange compact binary frames so the same protocol
// works over an in-process channel or a websocket connection.
package solver

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Operation selects the boolean operation applied over the request children.
type Operation string

// Supported boolean operations. Difference and Intersection fold the
// children left to right in array order.
const (
	OpUnion        Operation = "Union"
	OpDifference   Operation = "Difference"
	OpIntersection Operation = "Intersection"
)

var operationCodes = map[Operation]uint8{
	OpUnion:        0,
	OpDifference:   1,
	OpIntersection: 2,
}

var codeOperations = map[uint8]Operation{
	0: OpUnion,
	1: OpDifference,
	2: OpIntersection,
}

// MeshPayload is one serialized mesh: flat vertex and normal buffers plus the
// world and local placement matrices in column-major order.
type MeshPayload struct {
	Vertices []float64
	Normals  []float64
	World    [16]float64
	Local    [16]float64
}

// ChildPayload carries the meshes contributed by one compound child. A plain
// child contributes one mesh; a group child contributes one per member, which
// the worker unions before the boolean fold.
type ChildPayload struct {
	Meshes []MeshPayload
}

// Request is one boolean computation over an ordered list of children.
type Request struct {
	Op       Operation
	Children []ChildPayload
}

// Response statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Response carries the result buffers of a computation, or an error status.
type Response struct {
	Status   string
	Vertices []float64
	Normals  []float64
}

var errTruncatedFrame = errors.New("solver: truncated frame")

// frameLimit bounds decoded buffer lengths so a corrupt frame cannot force
// huge allocations.
const frameLimit = 1 << 28

// EncodeRequest serializes a request into a binary frame.
func EncodeRequest(req *Request) ([]byte, error) {
	code, known := operationCodes[req.Op]
	if !known {
		return nil, fmt.Errorf("solver: unknown operation %q", req.Op)
	}
	buf := &bytes.Buffer{}
	buf.WriteByte(code)
	writeCount(buf, len(req.Children))
	for _, child := range req.Children {
		writeCount(buf, len(child.Meshes))
		for _, mesh := range child.Meshes {
			if len(mesh.Vertices) != len(mesh.Normals) {
				return nil, fmt.Errorf("solver: vertex buffer length %d != normal buffer length %d",
					len(mesh.Vertices), len(mesh.Normals))
			}
			writeCount(buf, len(mesh.Vertices))
			writeFloats(buf, mesh.Vertices)
			writeFloats(buf, mesh.Normals)
			writeFloats(buf, mesh.World[:])
			writeFloats(buf, mesh.Local[:])
		}
	}
	return buf.Bytes(), nil
}

// DecodeRequest parses a binary request frame.
func DecodeRequest(frame []byte) (*Request, error) {
	r := bytes.NewReader(frame)
	code, err := r.ReadByte()
	if err != nil {
		return nil, errTruncatedFrame
	}
	op, known := codeOperations[code]
	if !known {
		return nil, fmt.Errorf("solver: unknown operation code %d", code)
	}
	numChildren, err := readCount(r)
	if err != nil {
		return nil, err
	}
	req := &Request{Op: op, Children: make([]ChildPayload, 0, numChildren)}
	for i := 0; i < numChildren; i++ {
		numMeshes, err := readCount(r)
		if err != nil {
			return nil, err
		}
		child := ChildPayload{Meshes: make([]MeshPayload, 0, numMeshes)}
		for j := 0; j < numMeshes; j++ {
			var mesh MeshPayload
			bufLen, err := readCount(r)
			if err != nil {
				return nil, err
			}
			if mesh.Vertices, err = readFloats(r, bufLen); err != nil {
				return nil, err
			}
			if mesh.Normals, err = readFloats(r, bufLen); err != nil {
				return nil, err
			}
			if err = readFloatsInto(r, mesh.World[:]); err != nil {
				return nil, err
			}
			if err = readFloatsInto(r, mesh.Local[:]); err != nil {
				return nil, err
			}
			child.Meshes = append(child.Meshes, mesh)
		}
		req.Children = append(req.Children, child)
	}
	return req, nil
}

// EncodeResponse serializes a response into a binary frame.
func EncodeResponse(res *Response) ([]byte, error) {
	buf := &bytes.Buffer{}
	if res.Status != StatusOK {
		buf.WriteByte(1)
		return buf.Bytes(), nil
	}
	if len(res.Vertices) != len(res.Normals) {
		return nil, fmt.Errorf("solver: vertex buffer length %d != normal buffer length %d",
			len(res.Vertices), len(res.Normals))
	}
	buf.WriteByte(0)
	writeCount(buf, len(res.Vertices))
	writeFloats(buf, res.Vertices)
	writeFloats(buf, res.Normals)
	return buf.Bytes(), nil
}

// DecodeResponse parses a binary response frame.
func DecodeResponse(frame []byte) (*Response, error) {
	r := bytes.NewReader(frame)
	status, err := r.ReadByte()
	if err != nil {
		return nil, errTruncatedFrame
	}
	if status != 0 {
		return &Response{Status: StatusError}, nil
	}
	bufLen, err := readCount(r)
	if err != nil {
		return nil, err
	}
	res := &Response{Status: StatusOK}
	if res.Vertices, err = readFloats(r, bufLen); err != nil {
		return nil, err
	}
	if res.Normals, err = readFloats(r, bufLen); err != nil {
		return nil, err
	}
	return res, nil
}

func writeCount(buf *bytes.Buffer, n int) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(n))
	buf.Write(b[:])
}

func readCount(r *bytes.Reader) (int, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, errTruncatedFrame
	}
	n := binary.LittleEndian.Uint32(b[:])
	if n > frameLimit {
		return 0, fmt.Errorf("solver: buffer length %d exceeds frame limit", n)
	}
	return int(n), nil
}

func writeFloats(buf *bytes.Buffer, values []float64) {
	var b [8]byte
	for _, v := range values {
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
		buf.Write(b[:])
	}
}

func readFloats(r *bytes.Reader, n int) ([]float64, error) {
	out := make([]float64, n)
	if err := readFloatsInto(r, out); err != nil {
		return nil, err
	}
	return out, nil
}

func readFloatsInto(r *bytes.Reader, out []float64) error {
	var b [8]byte
	for i := range out {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return errTruncatedFrame
		}
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[:]))
	}
	return nil
}
