package glustertest

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// TierInfo describes one tier of a tiered volume.
type TierInfo struct {
	TypeStr         string
	ReplicaCount    int
	DisperseCount   int
	RedundancyCount int
	Bricks          []Brick
}

// VolumeInfo is the parsed form of `gluster volume info <vol> --xml`
// for a single volume.
type VolumeInfo struct {
	Name            string
	StatusStr       string
	TypeStr         string
	BrickCount      int
	ReplicaCount    int
	ArbiterCount    int
	DisperseCount   int
	RedundancyCount int
	Bricks          []Brick
	HotTier         *TierInfo
	ColdTier        *TierInfo
	Options         map[string]string
}

// IsTier reports whether the volume has a hot/cold tiering split.
func (v *VolumeInfo) IsTier() bool {
	return strings.Contains(v.TypeStr, "Tier")
}

// BrickStatus is the point in time state of one brick process, derived
// from a volume status snapshot. It is recomputed on every poll.
type BrickStatus struct {
	Brick  Brick
	Online bool
	Port   int
	PID    int
}

// VolumeStatus is a point in time snapshot of the per brick process
// state of one volume.
type VolumeStatus struct {
	Volume string
	Bricks map[Brick]BrickStatus
}

// gluster CLI --xml envelope

type cliEnvelope struct {
	XMLName   xml.Name      `xml:"cliOutput"`
	OpRet     int           `xml:"opRet"`
	OpErrno   int           `xml:"opErrno"`
	OpErrstr  string        `xml:"opErrstr"`
	VolInfo   *volInfoXML   `xml:"volInfo"`
	VolStatus *volStatusXML `xml:"volStatus"`

	// tiering operations report through rebalance shaped sections
	VolRebalance  *TierStatus       `xml:"volRebalance"`
	VolDetachTier *DetachTierStatus `xml:"volDetachTier"`
}

type volInfoXML struct {
	Volumes []volumeXML `xml:"volumes>volume"`
}

type volumeXML struct {
	Name            string     `xml:"name"`
	StatusStr       string     `xml:"statusStr"`
	TypeStr         string     `xml:"typeStr"`
	BrickCount      int        `xml:"brickCount"`
	ReplicaCount    int        `xml:"replicaCount"`
	ArbiterCount    int        `xml:"arbiterCount"`
	DisperseCount   int        `xml:"disperseCount"`
	RedundancyCount int        `xml:"redundancyCount"`
	Bricks          bricksXML  `xml:"bricks"`
	Options         optionsXML `xml:"options"`
}

type optionsXML struct {
	Option []struct {
		Name  string `xml:"name"`
		Value string `xml:"value"`
	} `xml:"option"`
}

type bricksXML struct {
	Brick      []brickXML     `xml:"brick"`
	HotBricks  *hotBricksXML  `xml:"hotBricks"`
	ColdBricks *coldBricksXML `xml:"coldBricks"`
}

type brickXML struct {
	Name      string `xml:"name"`
	IsArbiter int    `xml:"isArbiter"`
}

type hotBricksXML struct {
	HotBrickType    string     `xml:"hotBrickType"`
	HotReplicaCount int        `xml:"hotreplicaCount"`
	Brick           []brickXML `xml:"brick"`
}

type coldBricksXML struct {
	ColdBrickType       string     `xml:"coldBrickType"`
	ColdReplicaCount    int        `xml:"coldreplicaCount"`
	ColdDisperseCount   int        `xml:"colddisperseCount"`
	ColdRedundancyCount int        `xml:"coldredundancyCount"`
	Brick               []brickXML `xml:"brick"`
}

type volStatusXML struct {
	Volumes []volStatusVolumeXML `xml:"volumes>volume"`
}

type volStatusVolumeXML struct {
	VolName   string             `xml:"volName"`
	NodeCount int                `xml:"nodeCount"`
	Nodes     []volStatusNodeXML `xml:"node"`
}

type volStatusNodeXML struct {
	Hostname string `xml:"hostname"`
	Path     string `xml:"path"`
	Status   int    `xml:"status"`
	Port     int    `xml:"port"`
	PID      int    `xml:"pid"`
}

func (c *Cluster) runCLI(cmd string) (*cliEnvelope, error) {
	out, err := c.exec.Exec(c.primary, cmd)
	if err != nil {
		return nil, errors.Wrapf(ErrUnavailable, "%q on %s: %v", cmd, c.primary, err)
	}
	var env cliEnvelope
	if err := xml.Unmarshal([]byte(out), &env); err != nil {
		return nil, errors.Wrapf(ErrUnavailable, "decoding output of %q: %v", cmd, err)
	}
	if env.OpRet != 0 {
		return nil, errors.Wrapf(ErrUnavailable, "%q failed: %s (errno %d)", cmd, env.OpErrstr, env.OpErrno)
	}
	return &env, nil
}

func parseBricks(in []brickXML) ([]Brick, error) {
	bricks := make([]Brick, 0, len(in))
	for _, bx := range in {
		b, err := ParseBrick(bx.Name)
		if err != nil {
			return nil, err
		}
		bricks = append(bricks, b)
	}
	return bricks, nil
}

// GetVolumeInfo fetches and parses the volume info of the named volume.
func (c *Cluster) GetVolumeInfo(volname string) (*VolumeInfo, error) {
	env, err := c.runCLI(fmt.Sprintf("gluster volume info %s --xml", volname))
	if err != nil {
		return nil, err
	}
	if env.VolInfo == nil || len(env.VolInfo.Volumes) == 0 {
		return nil, errors.Wrapf(ErrUnavailable, "volume %s does not exist", volname)
	}
	vx := env.VolInfo.Volumes[0]

	info := &VolumeInfo{
		Name:            vx.Name,
		StatusStr:       vx.StatusStr,
		TypeStr:         vx.TypeStr,
		BrickCount:      vx.BrickCount,
		ReplicaCount:    vx.ReplicaCount,
		ArbiterCount:    vx.ArbiterCount,
		DisperseCount:   vx.DisperseCount,
		RedundancyCount: vx.RedundancyCount,
		Options:         map[string]string{},
	}
	for _, opt := range vx.Options.Option {
		info.Options[opt.Name] = opt.Value
	}

	if info.Bricks, err = parseBricks(vx.Bricks.Brick); err != nil {
		return nil, errors.Wrapf(ErrUnavailable, "volume %s: %v", volname, err)
	}
	if vx.Bricks.HotBricks != nil {
		hot := &TierInfo{
			TypeStr:      vx.Bricks.HotBricks.HotBrickType,
			ReplicaCount: vx.Bricks.HotBricks.HotReplicaCount,
		}
		if hot.Bricks, err = parseBricks(vx.Bricks.HotBricks.Brick); err != nil {
			return nil, errors.Wrapf(ErrUnavailable, "volume %s hot tier: %v", volname, err)
		}
		info.HotTier = hot
	}
	if vx.Bricks.ColdBricks != nil {
		cold := &TierInfo{
			TypeStr:         vx.Bricks.ColdBricks.ColdBrickType,
			ReplicaCount:    vx.Bricks.ColdBricks.ColdReplicaCount,
			DisperseCount:   vx.Bricks.ColdBricks.ColdDisperseCount,
			RedundancyCount: vx.Bricks.ColdBricks.ColdRedundancyCount,
		}
		if cold.Bricks, err = parseBricks(vx.Bricks.ColdBricks.Brick); err != nil {
			return nil, errors.Wrapf(ErrUnavailable, "volume %s cold tier: %v", volname, err)
		}
		info.ColdTier = cold
	}
	return info, nil
}

// GetVolumeStatus fetches a point in time status snapshot of the named
// volume. Rows which do not describe a brick process (self-heal and
// quota daemons report a service name instead of an export path) are
// filtered out.
func (c *Cluster) GetVolumeStatus(volname string) (*VolumeStatus, error) {
	env, err := c.runCLI(fmt.Sprintf("gluster volume status %s detail --xml", volname))
	if err != nil {
		// callers poll on this, keep the status sentinel as the cause
		return nil, errors.Wrapf(ErrStatusUnavailable, "%v", err)
	}
	if env.VolStatus == nil || len(env.VolStatus.Volumes) == 0 {
		return nil, errors.Wrapf(ErrStatusUnavailable, "no status reported for volume %s", volname)
	}
	vx := env.VolStatus.Volumes[0]

	status := &VolumeStatus{
		Volume: vx.VolName,
		Bricks: map[Brick]BrickStatus{},
	}
	for _, node := range vx.Nodes {
		if !strings.HasPrefix(node.Path, "/") {
			continue
		}
		b := Brick{Node: node.Hostname, Path: node.Path}
		status.Bricks[b] = BrickStatus{
			Brick:  b,
			Online: node.Status == 1,
			Port:   node.Port,
			PID:    node.PID,
		}
	}
	return status, nil
}
