package kv

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log"

	"github.com/lintang-b-s/jointgraph/pkg/datastructure"

	"github.com/dgraph-io/badger/v4"
	"github.com/uber/h3-go/v4"
)

var (
	ErrJointsNotFound = errors.New("joints not found")
)

const (
	geometryKeyPrefix = "geom:"
	jointCellPrefix   = "jointcell:"
	maxFeatureIDKey   = "maxfeatureid"

	jointCellResolution = 9
)

// KVDB persists road geometry and the h3 joint-cell index in badger. It
// implements graph.GeometryLoader.
type KVDB struct {
	db           *badger.DB
	maxFeatureID uint32
}

func NewKVDB(db *badger.DB) *KVDB {
	k := &KVDB{db: db}
	k.maxFeatureID = k.loadMaxFeatureID()
	return k
}

func (k *KVDB) Close() error {
	return k.db.Close()
}

func geometryKey(featureID uint32) []byte {
	key := make([]byte, len(geometryKeyPrefix)+4)
	copy(key, geometryKeyPrefix)
	binary.BigEndian.PutUint32(key[len(geometryKeyPrefix):], featureID)
	return key
}

// SaveRoadGeometries batch-writes every feature geometry and remembers the
// largest feature id seen.
func (k *KVDB) SaveRoadGeometries(ctx context.Context, geometries map[uint32]datastructure.RoadGeometry) error {
	log.Printf("saving %d road geometries to key-value db...", len(geometries))

	batch := k.db.NewWriteBatch()
	defer batch.Cancel()

	maxFeatureID := uint32(0)
	for featureID, geom := range geometries {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled")
		default:
		}

		val, err := encodeGeometry(geom)
		if err != nil {
			return err
		}
		if err := batch.Set(geometryKey(featureID), val); err != nil {
			return err
		}
		if featureID > maxFeatureID {
			maxFeatureID = featureID
		}
	}

	maxVal := make([]byte, 4)
	binary.BigEndian.PutUint32(maxVal, maxFeatureID)
	if err := batch.Set([]byte(maxFeatureIDKey), maxVal); err != nil {
		return err
	}

	if err := batch.Flush(); err != nil {
		log.Printf("error saving road geometries: %v", err)
		return err
	}
	k.maxFeatureID = maxFeatureID
	log.Printf("saving road geometries done...")
	return nil
}

// GetRoad returns the stored geometry of the feature. Infallible per the
// loader contract, an unknown id returns the non-road sentinel geometry.
func (k *KVDB) GetRoad(featureID uint32) datastructure.RoadGeometry {
	val, err := k.get(geometryKey(featureID))
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			log.Printf("error reading geometry of feature %d: %v", featureID, err)
		}
		return datastructure.RoadGeometry{}
	}

	geom, err := decodeGeometry(val)
	if err != nil {
		log.Printf("error decoding geometry of feature %d: %v", featureID, err)
		return datastructure.RoadGeometry{}
	}
	return geom
}

func (k *KVDB) MaxFeatureID() uint32 {
	return k.maxFeatureID
}

func (k *KVDB) loadMaxFeatureID() uint32 {
	val, err := k.get([]byte(maxFeatureIDKey))
	if err != nil || len(val) != 4 {
		return 0
	}
	return binary.BigEndian.Uint32(val)
}

// JointCell is one joint placed on the map, ready to be bucketed by h3 cell.
type JointCell struct {
	JointID uint32
	Lat     float64
	Lon     float64
}

// BuildH3IndexedJoints buckets every joint by its resolution-9 h3 cell and
// batch-writes the buckets, the same shape the nearby-joints lookup reads.
func (k *KVDB) BuildH3IndexedJoints(ctx context.Context, joints []JointCell) error {
	log.Printf("creating & saving h3 indexed joints to key-value db...")

	cells := make(map[string][]JointCell)
	for _, joint := range joints {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled")
		default:
		}

		cell := h3.LatLngToCell(h3.NewLatLng(joint.Lat, joint.Lon), jointCellResolution)
		cells[cell.String()] = append(cells[cell.String()], joint)
	}

	batch := k.db.NewWriteBatch()
	defer batch.Cancel()

	for cellKey, cellJoints := range cells {
		val, err := encodeJointCells(cellJoints)
		if err != nil {
			return err
		}
		if err := batch.Set([]byte(jointCellPrefix+cellKey), val); err != nil {
			return err
		}
	}

	if err := batch.Flush(); err != nil {
		log.Printf("error saving h3 indexed joints: %v", err)
		return err
	}
	log.Printf("creating & saving h3 indexed joints done...")
	return nil
}

// GetNearbyJoints returns the joints in the h3 cell of the coordinate and the
// ring of cells around it.
func (k *KVDB) GetNearbyJoints(lat, lon float64) ([]JointCell, error) {
	home := h3.LatLngToCell(h3.NewLatLng(lat, lon), jointCellResolution)
	cells := h3.GridDisk(home, 1)

	var joints []JointCell
	for _, cell := range cells {
		val, err := k.get([]byte(jointCellPrefix + cell.String()))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			return nil, err
		}

		cellJoints, err := decodeJointCells(val)
		if err != nil {
			return nil, err
		}
		joints = append(joints, cellJoints...)
	}

	if len(joints) == 0 {
		return nil, ErrJointsNotFound
	}
	return joints, nil
}

func (k *KVDB) get(key []byte) ([]byte, error) {
	var val []byte
	err := k.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		val, err = item.ValueCopy(nil)
		return err
	})
	return val, err
}
