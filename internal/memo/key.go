package memo

import (
	"encoding/binary"
	"math"
	"strconv"

	"hospital-access/internal/crs"
	"hospital-access/internal/domain"

	"github.com/cespare/xxhash/v2"
	"github.com/paulmach/orb"
)

// Key：增量构造的内容摘要；字符串按长度前缀写入，避免拼接歧义
type Key struct {
	d   *xxhash.Digest
	buf [8]byte
}

func NewKey() *Key { return &Key{d: xxhash.New()} }

func (k *Key) Uint(v uint64) *Key {
	binary.LittleEndian.PutUint64(k.buf[:], v)
	_, _ = k.d.Write(k.buf[:])
	return k
}

func (k *Key) Int(v int) *Key { return k.Uint(uint64(v)) }

// Float：按位写入；-0 与 +0 视为不同
func (k *Key) Float(v float64) *Key { return k.Uint(math.Float64bits(v)) }

func (k *Key) String(s string) *Key {
	k.Int(len(s))
	_, _ = k.d.WriteString(s)
	return k
}

func (k *Key) Point(p orb.Point) *Key { return k.Float(p[0]).Float(p[1]) }

func (k *Key) CRS(c crs.Code) *Key { return k.Int(int(c)) }

func (k *Key) MultiPolygon(mp orb.MultiPolygon) *Key {
	k.Int(len(mp))
	for _, poly := range mp {
		k.Int(len(poly))
		for _, ring := range poly {
			k.Int(len(ring))
			for _, p := range ring {
				k.Point(p)
			}
		}
	}
	return k
}

func (k *Key) Hospitals(hs domain.HospitalSet) *Key {
	k.CRS(hs.CRS).Int(len(hs.Hospitals))
	for _, h := range hs.Hospitals {
		k.String(h.Name).String(h.Category).String(h.Institution).String(h.Department).Int(int(h.Status)).Point(h.Location)
	}
	return k
}

func (k *Key) HospitalRows(rows []domain.HospitalRow) *Key {
	k.Int(len(rows))
	for _, r := range rows {
		k.String(r.Name).String(r.Category).String(r.Institution).String(r.Department).
			String(r.Status).String(r.Easting).String(r.Northing)
	}
	return k
}

func (k *Key) Centers(cs domain.CenterSet) *Key {
	k.CRS(cs.CRS).Int(len(cs.Centers))
	for _, c := range cs.Centers {
		k.String(c.Name).String(c.Department).Point(c.Location)
	}
	return k
}

// Districts：含 HospitalCount，因此同形状不同计数的快照得到不同的键
func (k *Key) Districts(c crs.Code, ds []domain.District) *Key {
	k.CRS(c).Int(len(ds))
	for _, d := range ds {
		k.String(d.ID).String(d.Department).Int(d.HospitalCount).MultiPolygon(d.Geometry)
	}
	return k
}

// Sum：十六进制摘要
func (k *Key) Sum() string { return strconv.FormatUint(k.d.Sum64(), 16) }
