package model

import (
	"slices"

	"github.com/atomicstack/trammel/internal/transmission"
)

// fieldOp copies one wire field from a snapshot record onto the stored
// torrent and reports whether the value actually changed.
type fieldOp struct {
	flag  Field
	apply func(dst, src *transmission.Torrent) bool
}

func copyField[T comparable](get func(*transmission.Torrent) *T) func(dst, src *transmission.Torrent) bool {
	return func(dst, src *transmission.Torrent) bool {
		d, s := get(dst), get(src)
		if *d == *s {
			return false
		}
		*d = *s
		return true
	}
}

func copySlice[T comparable](get func(*transmission.Torrent) *[]T) func(dst, src *transmission.Torrent) bool {
	return func(dst, src *transmission.Torrent) bool {
		d, s := get(dst), get(src)
		if slices.Equal(*d, *s) {
			return false
		}
		*d = slices.Clone(*s)
		return true
	}
}

// fieldOps maps torrent-get field names to their merge behaviour. A field
// missing from this table is one the client never requests.
var fieldOps = map[string]fieldOp{
	"name": {FieldName, copyField(func(t *transmission.Torrent) *string { return &t.Name })},

	"status": {FieldStatus, copyField(func(t *transmission.Torrent) *transmission.Status { return &t.Status })},

	"haveValid":               {FieldProgress, copyField(func(t *transmission.Torrent) *int64 { return &t.HaveValid })},
	"haveUnchecked":           {FieldProgress, copyField(func(t *transmission.Torrent) *int64 { return &t.HaveUnchecked })},
	"sizeWhenDone":            {FieldProgress, copyField(func(t *transmission.Torrent) *int64 { return &t.SizeWhenDone })},
	"recheckProgress":         {FieldProgress, copyField(func(t *transmission.Torrent) *float64 { return &t.RecheckProgress })},
	"metadataPercentComplete": {FieldProgress, copyField(func(t *transmission.Torrent) *float64 { return &t.MetadataPercentComplete })},

	"totalSize":        {FieldSizes, copyField(func(t *transmission.Torrent) *int64 { return &t.TotalSize })},
	"leftUntilDone":    {FieldSizes, copyField(func(t *transmission.Torrent) *int64 { return &t.LeftUntilDone })},
	"desiredAvailable": {FieldSizes, copyField(func(t *transmission.Torrent) *int64 { return &t.DesiredAvailable })},

	"rateDownload": {FieldRates, copyField(func(t *transmission.Torrent) *int64 { return &t.RateDownload })},
	"rateUpload":   {FieldRates, copyField(func(t *transmission.Torrent) *int64 { return &t.RateUpload })},

	"eta": {FieldETA, copyField(func(t *transmission.Torrent) *int64 { return &t.ETA })},

	"uploadedEver":   {FieldRatio, copyField(func(t *transmission.Torrent) *int64 { return &t.UploadedEver })},
	"downloadedEver": {FieldRatio, copyField(func(t *transmission.Torrent) *int64 { return &t.DownloadedEver })},
	"corruptEver":    {FieldRatio, copyField(func(t *transmission.Torrent) *int64 { return &t.CorruptEver })},
	"uploadRatio":    {FieldRatio, copyField(func(t *transmission.Torrent) *float64 { return &t.UploadRatio })},

	"peersConnected":     {FieldPeers, copyField(func(t *transmission.Torrent) *int { return &t.PeersConnected })},
	"peersSendingToUs":   {FieldPeers, copyField(func(t *transmission.Torrent) *int { return &t.PeersSendingToUs })},
	"peersGettingFromUs": {FieldPeers, copyField(func(t *transmission.Torrent) *int { return &t.PeersGettingFromUs })},
	"peersFrom":          {FieldPeers, copyField(func(t *transmission.Torrent) *transmission.PeersFrom { return &t.PeersFrom })},
	"peers":              {FieldPeers, copySlice(func(t *transmission.Torrent) *[]transmission.Peer { return &t.Peers })},

	"trackerStats": {FieldTrackers, copySlice(func(t *transmission.Torrent) *[]transmission.TrackerStat { return &t.TrackerStats })},

	"files":      {FieldFiles, copySlice(func(t *transmission.Torrent) *[]transmission.FileInfo { return &t.Files })},
	"priorities": {FieldFiles, copySlice(func(t *transmission.Torrent) *[]transmission.Priority { return &t.Priorities })},
	"wanted":     {FieldFiles, copySlice(func(t *transmission.Torrent) *[]transmission.Flag { return &t.Wanted })},

	"error":       {FieldError, copyField(func(t *transmission.Torrent) *int { return &t.Error })},
	"errorString": {FieldError, copyField(func(t *transmission.Torrent) *string { return &t.ErrorString })},

	"uploadLimit":         {FieldLimits, copyField(func(t *transmission.Torrent) *int64 { return &t.UploadLimit })},
	"uploadLimited":       {FieldLimits, copyField(func(t *transmission.Torrent) *bool { return &t.UploadLimited })},
	"downloadLimit":       {FieldLimits, copyField(func(t *transmission.Torrent) *int64 { return &t.DownloadLimit })},
	"downloadLimited":     {FieldLimits, copyField(func(t *transmission.Torrent) *bool { return &t.DownloadLimited })},
	"honorsSessionLimits": {FieldLimits, copyField(func(t *transmission.Torrent) *bool { return &t.HonorsSessionLimits })},
	"bandwidthPriority":   {FieldLimits, copyField(func(t *transmission.Torrent) *transmission.Priority { return &t.BandwidthPriority })},
	"seedRatioLimit":      {FieldLimits, copyField(func(t *transmission.Torrent) *float64 { return &t.SeedRatioLimit })},
	"seedRatioMode":       {FieldLimits, copyField(func(t *transmission.Torrent) *transmission.SeedRatioMode { return &t.SeedRatioMode })},

	"queuePosition": {FieldQueue, copyField(func(t *transmission.Torrent) *int { return &t.QueuePosition })},

	"addedDate":    {FieldDates, copyField(func(t *transmission.Torrent) *int64 { return &t.AddedDate })},
	"activityDate": {FieldDates, copyField(func(t *transmission.Torrent) *int64 { return &t.ActivityDate })},
	"doneDate":     {FieldDates, copyField(func(t *transmission.Torrent) *int64 { return &t.DoneDate })},
	"startDate":    {FieldDates, copyField(func(t *transmission.Torrent) *int64 { return &t.StartDate })},
	"dateCreated":  {FieldDates, copyField(func(t *transmission.Torrent) *int64 { return &t.DateCreated })},

	"downloadDir": {FieldLocation, copyField(func(t *transmission.Torrent) *string { return &t.DownloadDir })},

	"labels": {FieldLabels, copySlice(func(t *transmission.Torrent) *[]string { return &t.Labels })},

	"isPrivate":  {FieldMeta, copyField(func(t *transmission.Torrent) *bool { return &t.IsPrivate })},
	"magnetLink": {FieldMeta, copyField(func(t *transmission.Torrent) *string { return &t.MagnetLink })},
	"comment":    {FieldMeta, copyField(func(t *transmission.Torrent) *string { return &t.Comment })},
	"creator":    {FieldMeta, copyField(func(t *transmission.Torrent) *string { return &t.Creator })},
	"hashString": {FieldMeta, copyField(func(t *transmission.Torrent) *string { return &t.Hash })},
	"pieceCount": {FieldMeta, copyField(func(t *transmission.Torrent) *int64 { return &t.PieceCount })},
	"pieceSize":  {FieldMeta, copyField(func(t *transmission.Torrent) *int64 { return &t.PieceSize })},
}
