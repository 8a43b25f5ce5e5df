package kv

import (
	"github.com/lintang-b-s/jointgraph/pkg/datastructure"

	"github.com/DataDog/zstd"
	"github.com/kelindar/binary"
)

func encodeGeometry(geom datastructure.RoadGeometry) ([]byte, error) {
	encoded, err := binary.Marshal(geom)
	if err != nil {
		return nil, err
	}
	return compress(encoded)
}

func decodeGeometry(bbCompressed []byte) (datastructure.RoadGeometry, error) {
	var geom datastructure.RoadGeometry
	bb, err := decompress(bbCompressed)
	if err != nil {
		return geom, err
	}
	err = binary.Unmarshal(bb, &geom)
	return geom, err
}

func encodeJointCells(joints []JointCell) ([]byte, error) {
	encoded, err := binary.Marshal(joints)
	if err != nil {
		return nil, err
	}
	return compress(encoded)
}

func decodeJointCells(bbCompressed []byte) ([]JointCell, error) {
	var joints []JointCell
	bb, err := decompress(bbCompressed)
	if err != nil {
		return nil, err
	}
	err = binary.Unmarshal(bb, &joints)
	return joints, err
}

func compress(bb []byte) ([]byte, error) {
	var bbCompressed []byte
	bbCompressed, err := zstd.Compress(bbCompressed, bb)
	if err != nil {
		return []byte{}, err
	}
	return bbCompressed, nil
}

func decompress(bbCompressed []byte) ([]byte, error) {
	var bb []byte
	bb, err := zstd.Decompress(bb, bbCompressed)
	if err != nil {
		return []byte{}, err
	}
	return bb, nil
}
