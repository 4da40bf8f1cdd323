package transmission

// Field sets for torrent-get requests, sized to what each view renders so
// payloads stay proportional to the screen, not the daemon record.

// ListFields covers the torrent list rows plus everything sorting and
// filtering read.
var ListFields = []string{
	"id", "name", "status", "downloadDir", "error", "errorString",
	"eta", "rateDownload", "rateUpload",
	"totalSize", "sizeWhenDone", "haveValid", "haveUnchecked",
	"leftUntilDone", "desiredAvailable",
	"uploadedEver", "uploadRatio", "recheckProgress",
	"peersConnected", "peersSendingToUs", "peersGettingFromUs",
	"addedDate", "activityDate", "doneDate",
	"uploadLimit", "uploadLimited", "downloadLimit", "downloadLimited",
	"honorsSessionLimits", "bandwidthPriority",
	"seedRatioLimit", "seedRatioMode", "isPrivate", "magnetLink",
	"metadataPercentComplete", "queuePosition", "trackerStats",
}

// DetailFields adds what only the detail pane shows.
var DetailFields = append([]string{
	"files", "priorities", "wanted", "peers", "peersFrom",
	"comment", "creator", "dateCreated", "startDate", "hashString",
	"pieceCount", "pieceSize", "downloadedEver", "corruptEver",
}, ListFields...)

// labels arrived in RPC 16.
const labelsMinVersion = 16

func withVersionFields(fields []string, rpcVersion int) []string {
	if rpcVersion < labelsMinVersion {
		return fields
	}
	out := make([]string, 0, len(fields)+1)
	out = append(out, fields...)
	out = append(out, "labels")
	return out
}
