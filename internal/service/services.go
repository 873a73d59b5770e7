package service

import (
	"github.com/easysholi/listsync/internal/adapter"
	"github.com/easysholi/listsync/internal/logger"
	"github.com/easysholi/listsync/internal/store"
)

type ClientServices struct {
	Monitor      *Monitor
	Synchronizer *Synchronizer
	Session      *ListSession
	Profiles     ProfileService
	SyncJob      SyncJob
}

func NewClientServices(
	queue *store.MutationQueue,
	snapshots *store.SnapshotStore,
	remote adapter.RemoteStore,
	monitor *Monitor,
	log *logger.Logger,
) *ClientServices {
	synchronizer := NewSynchronizer(queue, snapshots, remote, monitor, log.GetChildLogger())
	session := NewListSession(remote, queue, snapshots, monitor, log.GetChildLogger())
	profiles := NewProfileService(remote, log.GetChildLogger())

	return &ClientServices{
		Monitor:      monitor,
		Synchronizer: synchronizer,
		Session:      session,
		Profiles:     profiles,
		SyncJob:      NewSyncJob(synchronizer),
	}
}
